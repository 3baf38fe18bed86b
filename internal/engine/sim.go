package engine

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"deriv-trading-bot/internal/types"
)

// SimParams carries everything the simulator needs about the intended trade.
type SimParams struct {
	Symbol   string
	Amount   float64
	Decision *types.Decision
	Duration types.DurationPlan
	Price    float64
}

// SimResult is a settled simulated trade plus the context that produced it.
type SimResult struct {
	Record  types.TradeRecord
	Risk    types.RiskAssessment
	Quality types.QualityScore
	Context types.HistoricalContext
	WinProb float64
}

// SimulateTrade settles a trade instantly against a regime-aware win
// probability instead of sending it to the brokerage. The probability starts
// at 0.5 and absorbs confidence, signal strength, regime, pattern, mood
// alignment, temporal and historical modifiers before being clamped to
// [0.28, 0.83]. Winning trades pay out 1.75x plus a volatility kicker.
func SimulateTrade(p SimParams, history []types.TradeRecord, agentWinRate float64, rnd *rand.Rand, now time.Time) SimResult {
	d := p.Decision
	recent := history
	if len(recent) > 20 {
		recent = recent[:20]
	}
	context := AnalyzeHistoricalContext(recent, d.Action, d.Regime.Type, now)
	risk := AssessTradeRisk(d.Action, d.Confidence, d.Indicators, p.Price, d.Regime, d.Mood, d.Temporal, context)

	winChance := 0.5
	winChance += d.Confidence * 0.25
	winChance += math.Abs(d.CompositeSignal) / 10

	switch {
	case strings.Contains(d.Regime.Type, "STRONG"):
		winChance += 0.12
	case d.Regime.Type == types.RegimeHighVolatility:
		winChance -= 0.08
	case d.Regime.Type == types.RegimeConsolidation:
		winChance -= 0.05
	}

	if d.Indicators.Pattern.Strength > 0.75 {
		winChance += 0.1
	} else if d.Indicators.Pattern.Strength < 0.5 {
		winChance -= 0.05
	}

	aligned := (d.Mood.Mood == types.SignalBullish && strings.Contains(d.Action, "BUY")) ||
		(d.Mood.Mood == types.SignalBearish && strings.Contains(d.Action, "SELL"))
	if aligned && d.Mood.Strength > 0.6 {
		winChance += 0.08
	} else if !aligned && d.Mood.Strength > 0.6 {
		winChance -= 0.06
	}

	winChance *= d.Temporal.ConfidenceModifier
	winChance *= context.Score

	if d.Environment.Clarity > 0.6 {
		winChance += 0.06
	} else if d.Environment.Clarity < 0.4 {
		winChance -= 0.04
	}

	if risk.Score > 0.7 {
		winChance -= 0.1
	}

	if agentWinRate > 0 {
		winChance += (agentWinRate - 0.5) * 0.15
	}

	winChance = math.Max(0.28, math.Min(0.83, winChance))

	win := rnd.Float64() < winChance
	volFactor := d.Indicators.Volatility * 100
	payout := -1.0
	if win {
		payout = 1.75 + volFactor/10
	}
	profit := p.Amount * payout

	result := types.ResultLoss
	if win {
		result = types.ResultWin
	}

	quality := DecisionQuality(d)

	rec := types.TradeRecord{
		Time:            now.Format("15:04:05"),
		Timestamp:       now.Format(time.RFC3339),
		Mode:            types.ModeSimulation,
		Symbol:          p.Symbol,
		Amount:          p.Amount,
		Decision:        d.Action,
		Result:          result,
		Profit:          profit,
		Confidence:      d.Confidence,
		CompositeSignal: d.CompositeSignal,
		Regime:          d.Regime.Type,
		Mood:            d.Mood.Mood,
		DurationSec:     p.Duration.Minutes * 60,
		Agent:           d.Agent,
		RiskScore:       risk.Score,
		RiskCategory:    risk.Category,
		Quality:         quality.Grade,
		WinProbability:  winChance,
		Session:         d.Temporal.Session,
	}

	return SimResult{Record: rec, Risk: risk, Quality: quality, Context: context, WinProb: winChance}
}
