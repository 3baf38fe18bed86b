package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deriv-trading-bot/internal/types"
)

func simDecision() *types.Decision {
	return &types.Decision{
		Action:          types.ActionBuy,
		Confidence:      0.8,
		CompositeSignal: 3,
		Indicators:      calmSnapshot(),
		Regime:          types.Regime{Type: types.RegimeNeutral, Confidence: 0.8},
		Mood:            types.Mood{Mood: types.SignalBullish, Strength: 0.7},
		Temporal:        types.Temporal{ConfidenceModifier: 1.0, LiquidityScore: 1.0, Session: "US"},
		Environment:     types.Environment{Clarity: 0.7},
		Agent:           "balanced",
	}
}

func TestSimulateTradeSettlesInstantly(t *testing.T) {
	now := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)
	rnd := rand.New(rand.NewSource(1)) // first Float64 is ~0.60, below the clamped 0.83 win chance

	res := SimulateTrade(SimParams{
		Symbol:   "R_100",
		Amount:   10,
		Decision: simDecision(),
		Duration: types.DurationPlan{Minutes: 15},
		Price:    100,
	}, nil, 0.6, rnd, now)

	assert.Equal(t, 0.83, res.WinProb, "strong setup must clamp at the ceiling")
	assert.Equal(t, types.ResultWin, res.Record.Result)
	assert.InDelta(t, 18.5, res.Record.Profit, 1e-9)

	rec := res.Record
	assert.Equal(t, types.ModeSimulation, rec.Mode)
	assert.Equal(t, "R_100", rec.Symbol)
	assert.Equal(t, types.ActionBuy, rec.Decision)
	assert.Equal(t, "15:30:00", rec.Time)
	assert.Equal(t, now.Format(time.RFC3339), rec.Timestamp)
	assert.Equal(t, 900, rec.DurationSec)
	assert.Equal(t, "US", rec.Session)
	assert.NotEmpty(t, rec.Quality)
	assert.NotEmpty(t, rec.RiskCategory)
}

func TestSimulateTradeLossPaysStake(t *testing.T) {
	now := time.Now()
	d := simDecision()
	d.Confidence = 0.3
	d.CompositeSignal = 0.5
	d.Indicators.Pattern.Strength = 0.2
	d.Mood = types.Mood{Mood: types.SignalBearish, Strength: 0.8} // misaligned
	d.Environment.Clarity = 0.3
	d.Regime = types.Regime{Type: types.RegimeHighVolatility, Confidence: 0.4}
	d.Temporal.ConfidenceModifier = 0.7

	// seed 1: first Float64 is ~0.60, well above the floored 0.28 win chance
	res := SimulateTrade(SimParams{Symbol: "R_100", Amount: 10, Decision: d}, nil, 0, rand.New(rand.NewSource(1)), now)

	assert.Equal(t, 0.28, res.WinProb, "weak setup must clamp at the floor")
	assert.Equal(t, types.ResultLoss, res.Record.Result)
	assert.InDelta(t, -10, res.Record.Profit, 1e-9)
}
