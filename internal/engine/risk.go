package engine

import (
	"strings"

	"deriv-trading-bot/internal/market"
	"deriv-trading-bot/internal/types"
)

// Risk categories.
const (
	RiskLow         = "LOW"
	RiskModerateLow = "MODERATE-LOW"
	RiskModerate    = "MODERATE"
	RiskHigh        = "HIGH"
	RiskVeryHigh    = "VERY HIGH"
)

// AssessTradeRisk scores a candidate trade on a 0.1-1.0 scale by stacking
// additive penalty factors, then buckets the score into a category with a
// sizing recommendation.
func AssessTradeRisk(action string, confidence float64, snap types.IndicatorSnapshot, price float64, regime types.Regime, mood types.Mood, temporal types.Temporal, context types.HistoricalContext) types.RiskAssessment {
	score := 0.5
	factors := []string{}

	switch {
	case snap.Volatility > 0.02:
		score += 0.25
		factors = append(factors, "Extreme volatility")
	case snap.Volatility > 0.015:
		score += 0.15
		factors = append(factors, "High volatility")
	case snap.Volatility < 0.005:
		score += 0.1
		factors = append(factors, "Very low volatility (low profit potential)")
	}

	switch {
	case regime.Type == types.RegimeHighVolatility:
		score += 0.2
		factors = append(factors, "High volatility regime")
	case regime.Type == types.RegimeConsolidation:
		score += 0.15
		factors = append(factors, "Ranging market (choppy)")
	case regime.Confidence < 0.6:
		score += 0.1
		factors = append(factors, "Uncertain regime")
	}

	againstMood := (mood.Mood == types.SignalBullish && strings.Contains(action, "SELL")) ||
		(mood.Mood == types.SignalBearish && strings.Contains(action, "BUY"))
	if againstMood && mood.Strength > 0.6 {
		score += 0.15
		factors = append(factors, "Trading against market mood")
	}

	if temporal.LiquidityScore < 0.7 {
		score += 0.1
		factors = append(factors, "Low liquidity period")
	}
	if temporal.Session == market.SessionAsian && snap.Volatility > 0.015 {
		score += 0.05
		factors = append(factors, "High volatility during low-volume session")
	}

	if snap.Pattern.Strength < 0.5 {
		score += 0.08
		factors = append(factors, "Weak pattern formation")
	}

	if context.Score < 0.8 {
		score += 0.12
		factors = append(factors, "Poor historical performance in similar conditions")
	}

	if price > 0 && snap.ATR/price*100 > 2 {
		score += 0.1
		factors = append(factors, "High ATR relative to price")
	}

	if confidence < 0.65 {
		score += 0.15
		factors = append(factors, "Low decision confidence")
	}

	if score < 0.1 {
		score = 0.1
	}
	if score > 1.0 {
		score = 1.0
	}

	category := RiskModerate
	switch {
	case score > 0.75:
		category = RiskVeryHigh
	case score > 0.6:
		category = RiskHigh
	case score < 0.35:
		category = RiskLow
	case score < 0.5:
		category = RiskModerateLow
	}

	recommendation := "Risk acceptable for standard position"
	switch {
	case score > 0.7:
		recommendation = "Consider reducing position size or avoiding trade"
	case score > 0.55:
		recommendation = "Use conservative position sizing"
	}

	if len(factors) == 0 {
		factors = []string{"Standard market conditions"}
	}
	return types.RiskAssessment{Score: score, Category: category, Factors: factors, Recommendation: recommendation}
}

// DecisionQuality grades a finished decision 0-100 from confidence, signal
// strength, pattern, regime clarity, environment clarity, mood alignment and
// an adjustment penalty.
func DecisionQuality(d *types.Decision) types.QualityScore {
	score := 0
	factors := []string{}

	switch {
	case d.Confidence > 0.75:
		score += 30
		factors = append(factors, "High confidence")
	case d.Confidence > 0.65:
		score += 20
		factors = append(factors, "Good confidence")
	default:
		score += 10
		factors = append(factors, "Moderate confidence")
	}

	signal := d.CompositeSignal
	if signal < 0 {
		signal = -signal
	}
	switch {
	case signal > 4:
		score += 25
		factors = append(factors, "Very strong signal")
	case signal > 3:
		score += 18
		factors = append(factors, "Strong signal")
	default:
		score += 10
		factors = append(factors, "Moderate signal")
	}

	switch {
	case d.Indicators.Pattern.Strength > 0.75:
		score += 15
		factors = append(factors, "Strong pattern")
	case d.Indicators.Pattern.Strength > 0.5:
		score += 8
		factors = append(factors, "Moderate pattern")
	}

	switch {
	case d.Regime.Confidence > 0.8:
		score += 15
		factors = append(factors, "Clear regime")
	case d.Regime.Confidence > 0.65:
		score += 8
		factors = append(factors, "Defined regime")
	}

	switch {
	case d.Environment.Clarity > 0.6:
		score += 10
		factors = append(factors, "Clear market structure")
	case d.Environment.Clarity > 0.4:
		score += 5
		factors = append(factors, "Moderate market clarity")
	}

	aligned := (d.Mood.Mood == types.SignalBullish && strings.Contains(d.Action, "BUY")) ||
		(d.Mood.Mood == types.SignalBearish && strings.Contains(d.Action, "SELL"))
	if aligned && d.Mood.Strength > 0.6 {
		score += 5
		factors = append(factors, "Mood-aligned")
	}

	if len(d.Adjustments) > 2 {
		score -= 5
		factors = append(factors, "Multiple adjustments needed")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	grade := "D"
	switch {
	case score >= 85:
		grade = "A+"
	case score >= 75:
		grade = "A"
	case score >= 65:
		grade = "B"
	case score >= 55:
		grade = "C"
	}
	return types.QualityScore{Score: score, Grade: grade, Factors: factors}
}
