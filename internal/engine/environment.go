package engine

import (
	"deriv-trading-bot/internal/types"
)

// Environment trend labels.
const (
	TrendUp        = "UPTREND"
	TrendDown      = "DOWNTREND"
	TrendSideways  = "SIDEWAYS"
	TrendUndefined = "UNDEFINED"
)

// assessEnvironment is the pre-decision layer: it classifies the MA14/MA50
// relationship, measures how aligned the basic indicator votes are (clarity)
// and buckets the noise level from volatility.
func assessEnvironment(price, ma14, ma50, rsi float64, bb types.BollingerBand, volatility float64) types.Environment {
	env := types.Environment{Trend: TrendUndefined}

	switch {
	case ma14 > ma50*1.002:
		env.Trend = TrendUp
		env.Strength = min((ma14/ma50-1)*100, 1)
	case ma14 < ma50*0.998:
		env.Trend = TrendDown
		env.Strength = min((1-ma14/ma50)*100, 1)
	default:
		env.Trend = TrendSideways
		env.Strength = 0.3
	}

	votes := make([]float64, 0, 3)
	if price > ma14 {
		votes = append(votes, 1)
	} else {
		votes = append(votes, -1)
	}
	switch {
	case rsi < 40:
		votes = append(votes, 1)
	case rsi > 60:
		votes = append(votes, -1)
	default:
		votes = append(votes, 0)
	}
	switch {
	case price <= bb.Lower:
		votes = append(votes, 1)
	case price >= bb.Upper:
		votes = append(votes, -1)
	default:
		votes = append(votes, 0)
	}
	sum := 0.0
	for _, v := range votes {
		sum += v
	}
	avg := sum / float64(len(votes))
	if avg < 0 {
		avg = -avg
	}
	env.Clarity = avg

	switch {
	case volatility > 0.015:
		env.Noise = 0.8
	case volatility > 0.01:
		env.Noise = 0.5
	default:
		env.Noise = 0.2
	}
	return env
}
