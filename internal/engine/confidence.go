package engine

import (
	"math"

	"deriv-trading-bot/internal/types"
)

// adaptiveConfidence models how much to trust the composite signal. The base
// comes from signal magnitude, then regime confidence, pattern strength, mood
// strength, trailing win rate, session modifier, a volatility penalty and a
// trend-efficiency bonus shape it before the final [0.25, 0.98] clamp.
func adaptiveConfidence(composite float64, pattern types.PatternResult, volatility float64, closes []float64, regime types.Regime, mood types.Mood, temporal types.Temporal, winRate float64) float64 {
	strength := math.Abs(composite)
	confidence := math.Min(strength/5, 1) * 0.5
	confidence += strength / 10 * 0.15

	confidence *= regime.Confidence

	if pattern.Strength > 0.7 {
		confidence += 0.1 * pattern.Strength
	}

	confidence += mood.Strength * 0.08

	if winRate > 0.6 {
		confidence *= 1.1
	} else if winRate < 0.4 {
		confidence *= 0.85
	}

	confidence *= temporal.ConfidenceModifier

	if volatility > 0.018 {
		confidence *= 0.9
	}

	// Movement efficiency: net drift of the last 20 closes against the total
	// path length. Clean trends earn a bonus.
	if len(closes) >= 20 {
		recent := closes[len(closes)-20:]
		drift := recent[len(recent)-1] - recent[0]
		avgChange := 0.0
		for i := 1; i < len(recent); i++ {
			avgChange += math.Abs(recent[i] - recent[i-1])
		}
		avgChange /= 19
		denom := avgChange * 20
		if denom == 0 {
			denom = 1
		}
		if math.Abs(drift)/denom > 0.6 {
			confidence *= 1.08
		}
	}

	return math.Max(0.25, math.Min(0.98, confidence*1.05))
}
