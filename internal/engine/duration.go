package engine

import (
	"fmt"
	"math"

	"deriv-trading-bot/internal/types"
)

// OptimizeDuration picks a contract duration from the configured base
// granularity, stretched in strong trends and compressed in high volatility,
// with pattern and confidence refinements. The result is expressed in minutes
// of contract time with a floor of 15.
func OptimizeDuration(confidence float64, regime types.Regime, volatility float64, pattern types.PatternResult, baseGranularitySec int) types.DurationPlan {
	multiplier := 1.0
	risk := 0.5

	switch regime.Type {
	case types.RegimeStrongUptrend, types.RegimeStrongDowntrend:
		multiplier = 1.5
		risk = 0.3
	case types.RegimeHighVolatility:
		multiplier = 0.7
		risk = 0.7
	case types.RegimeConsolidation:
		multiplier = 0.8
		risk = 0.6
	}

	if pattern.Strength > 0.8 {
		multiplier *= 1.2
		risk *= 0.85
	}

	if volatility > 0.015 {
		multiplier *= 0.8
		risk *= 1.2
	} else if volatility < 0.005 {
		multiplier *= 1.1
		risk *= 0.9
	}

	if confidence > 0.8 {
		multiplier *= 1.15
		risk *= 0.9
	} else if confidence < 0.6 {
		multiplier *= 0.85
		risk *= 1.1
	}

	optimized := math.Round(float64(baseGranularitySec) * multiplier)
	minutes := int(math.Max(15, optimized/60))

	return types.DurationPlan{
		Minutes:   minutes,
		RiskScore: math.Min(risk, 1),
		Rationale: fmt.Sprintf("Optimized from %ds to %dm (%s, Vol: %.3f%%)", baseGranularitySec, minutes, regime.Type, volatility*100),
	}
}
