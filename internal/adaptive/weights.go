// Package adaptive holds the self-tuning parts of the strategy: the
// indicator weight set that shifts with regime and performance, and the
// pool of decision agents competing on recent win rate.
package adaptive

import (
	"strings"

	"deriv-trading-bot/internal/types"
)

// Weight keys. Volume participates in normalization only.
const (
	WeightMA       = "ma"
	WeightRSI      = "rsi"
	WeightBB       = "bb"
	WeightMomentum = "momentum"
	WeightVolume   = "volume"
)

// Weights is the mutable indicator weight set. The refinement pass keeps the
// sum anchored near 4.0 with each weight clamped to [0.3, 2.0].
type Weights map[string]float64

func DefaultWeights() Weights {
	return Weights{WeightMA: 1.0, WeightRSI: 1.0, WeightBB: 1.0, WeightMomentum: 1.0, WeightVolume: 1.0}
}

func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ApplyRegime resets the weight set to the preset for the given regime, then
// scales the whole set by recent win rate: amplify above 0.65, damp below
// 0.45.
func (w Weights) ApplyRegime(regime types.Regime, winRate float64) {
	switch regime.Type {
	case types.RegimeStrongUptrend, types.RegimeStrongDowntrend:
		w[WeightMA] = 1.3
		w[WeightMomentum] = 1.4
		w[WeightRSI] = 0.8
		w[WeightBB] = 0.9
	case types.RegimeHighVolatility:
		w[WeightBB] = 1.5
		w[WeightRSI] = 1.2
		w[WeightMA] = 0.7
		w[WeightMomentum] = 1.1
	case types.RegimeConsolidation:
		w[WeightBB] = 1.3
		w[WeightRSI] = 1.4
		w[WeightMA] = 0.6
		w[WeightMomentum] = 0.5
	default:
		for k, v := range DefaultWeights() {
			w[k] = v
		}
	}

	if winRate > 0.65 {
		for k := range w {
			w[k] *= 1.1
		}
	} else if winRate < 0.45 {
		for k := range w {
			w[k] *= 0.85
		}
	}
}

// Refine nudges the weights from the last 200 trades' outcome and the current
// regime, then re-normalizes toward a total of 4.0 to stop drift. Needs at
// least 50 trades of history to act.
func (w Weights) Refine(history []types.TradeRecord, regime types.Regime) {
	if len(history) < 50 {
		return
	}
	recent := history
	if len(recent) > 200 {
		recent = recent[:200]
	}
	wins := 0
	for _, t := range recent {
		if t.Won() {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(recent))

	if winRate < 0.45 {
		w[WeightMomentum] *= 1.08
		w[WeightMA] *= 0.95
		w[WeightRSI] *= 1.05
	} else if winRate > 0.60 {
		w[WeightRSI] *= 0.92
		w[WeightBB] *= 1.05
		w[WeightMomentum] *= 0.97
	}

	if regime.Type == types.RegimeHighVolatility {
		w[WeightBB] *= 1.1
		w[WeightMomentum] *= 0.9
	} else if strings.Contains(regime.Type, "STRONG") {
		w[WeightMA] *= 1.15
		w[WeightMomentum] *= 1.1
	}

	total := 0.0
	for _, v := range w {
		total += v
	}
	if total == 0 {
		return
	}
	norm := 4.0 / total
	for k := range w {
		v := w[k] * norm
		if v < 0.3 {
			v = 0.3
		}
		if v > 2.0 {
			v = 2.0
		}
		w[k] = v
	}
}
