package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deriv-trading-bot/internal/types"
)

func calmSnapshot() types.IndicatorSnapshot {
	return types.IndicatorSnapshot{
		Volatility: 0.01,
		ATR:        0.5,
		Pattern:    types.PatternResult{Name: "HAMMER", Strength: 0.8, Signal: types.SignalBullish},
	}
}

func TestAssessTradeRiskBaseline(t *testing.T) {
	r := AssessTradeRisk(types.ActionBuy, 0.8, calmSnapshot(), 100,
		types.Regime{Type: types.RegimeNeutral, Confidence: 0.8},
		types.Mood{Mood: types.SignalBullish, Strength: 0.7},
		types.Temporal{LiquidityScore: 1.0, Session: "US"},
		types.HistoricalContext{Score: 1.0},
	)

	assert.InDelta(t, 0.5, r.Score, 1e-9)
	assert.Equal(t, RiskModerate, r.Category)
	assert.Equal(t, []string{"Standard market conditions"}, r.Factors)
}

func TestAssessTradeRiskStacksFactors(t *testing.T) {
	snap := calmSnapshot()
	snap.Volatility = 0.025
	snap.Pattern.Strength = 0.3

	r := AssessTradeRisk(types.ActionSell, 0.5, snap, 100,
		types.Regime{Type: types.RegimeHighVolatility, Confidence: 0.5},
		types.Mood{Mood: types.SignalBullish, Strength: 0.8},
		types.Temporal{LiquidityScore: 0.6, Session: "ASIAN"},
		types.HistoricalContext{Score: 0.6},
	)

	assert.Equal(t, 1.0, r.Score, "stacked factors must clamp at 1.0")
	assert.Equal(t, RiskVeryHigh, r.Category)
	assert.Contains(t, r.Factors, "Extreme volatility")
	assert.Contains(t, r.Factors, "High volatility regime")
	assert.Contains(t, r.Factors, "Trading against market mood")
	assert.Contains(t, r.Factors, "Low decision confidence")
	assert.Equal(t, "Consider reducing position size or avoiding trade", r.Recommendation)
}

func TestDecisionQualityGrades(t *testing.T) {
	d := &types.Decision{
		Action:          types.ActionBuy,
		Confidence:      0.8,
		CompositeSignal: 4.5,
		Indicators:      types.IndicatorSnapshot{Pattern: types.PatternResult{Strength: 0.8}},
		Regime:          types.Regime{Confidence: 0.85},
		Environment:     types.Environment{Clarity: 0.7},
		Mood:            types.Mood{Mood: types.SignalBullish, Strength: 0.7},
	}
	q := DecisionQuality(d)
	assert.Equal(t, 100, q.Score)
	assert.Equal(t, "A+", q.Grade)

	weak := &types.Decision{
		Action:          types.ActionSell,
		Confidence:      0.5,
		CompositeSignal: -2,
		Adjustments:     []string{"a", "b", "c"},
	}
	wq := DecisionQuality(weak)
	assert.Equal(t, "D", wq.Grade)
	assert.Contains(t, wq.Factors, "Multiple adjustments needed")
}

func TestOptimizeDurationFloorsAtFifteenMinutes(t *testing.T) {
	plan := OptimizeDuration(0.85,
		types.Regime{Type: types.RegimeStrongUptrend},
		0.01,
		types.PatternResult{Strength: 0.85},
		60,
	)
	assert.Equal(t, 15, plan.Minutes, "one-minute base granularity always hits the floor")
	assert.Greater(t, plan.RiskScore, 0.0)
	assert.NotEmpty(t, plan.Rationale)
}

func TestOptimizeDurationShortensInHighVolatility(t *testing.T) {
	long := OptimizeDuration(0.85, types.Regime{Type: types.RegimeStrongUptrend}, 0.003,
		types.PatternResult{Strength: 0.85}, 3600)
	short := OptimizeDuration(0.5, types.Regime{Type: types.RegimeHighVolatility}, 0.02,
		types.PatternResult{Strength: 0.3}, 3600)
	assert.Greater(t, long.Minutes, short.Minutes)
	assert.Greater(t, short.RiskScore, long.RiskScore)
}

func contextHistory(n int, decision, result, regime string, ts time.Time) []types.TradeRecord {
	out := make([]types.TradeRecord, n)
	for i := range out {
		out[i] = types.TradeRecord{
			Decision:  decision,
			Result:    result,
			Regime:    regime,
			Timestamp: ts.Format(time.RFC3339),
		}
	}
	return out
}

func TestHistoricalContextThinHistory(t *testing.T) {
	ctx := AnalyzeHistoricalContext(nil, types.ActionBuy, types.RegimeNeutral, time.Now())
	assert.Equal(t, 1.0, ctx.Score)
	assert.Empty(t, ctx.Insights)
}

func TestHistoricalContextDirectionFatigue(t *testing.T) {
	now := time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)
	// losing streak of BUY trades in a different regime and a different hour,
	// so only the direction, confidence-free and streak checks fire
	recent := contextHistory(6, types.ActionBuy, types.ResultLoss, types.RegimeConsolidation,
		now.Add(-6*time.Hour))

	ctx := AnalyzeHistoricalContext(recent, types.ActionBuy, types.RegimeNeutral, now)
	assert.Less(t, ctx.Score, 1.0)
	assert.GreaterOrEqual(t, ctx.Score, 0.5)

	found := false
	for _, in := range ctx.Insights {
		if in == "Direction fatigue: 6 recent BUY trades with 0% WR" {
			found = true
		}
	}
	assert.True(t, found, "expected a direction fatigue insight, got %v", ctx.Insights)
}

func TestHistoricalContextHotStreak(t *testing.T) {
	now := time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)
	recent := contextHistory(5, types.ActionSell, types.ResultWin, types.RegimeNeutral,
		now.Add(-6*time.Hour))

	ctx := AnalyzeHistoricalContext(recent, types.ActionBuy, types.RegimeStrongUptrend, now)
	assert.Greater(t, ctx.Score, 1.0)
}
