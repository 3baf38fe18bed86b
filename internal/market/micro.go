package market

import (
	"math"

	"deriv-trading-bot/internal/types"
)

// AnalyzeMicroStructure inspects the last 20 ticks for short-horizon momentum
// and volatility and predicts the likely shape of the forming candle. Fewer
// than 10 ticks is UNCERTAIN.
func AnalyzeMicroStructure(ticks []types.Tick, current types.Candle) types.MicroStructure {
	if len(ticks) < 10 {
		return types.MicroStructure{Prediction: types.MicroUncertain}
	}

	recent := ticks
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	sum := 0.0
	for _, t := range recent {
		sum += t.Quote
	}
	avg := sum / float64(len(recent))

	momentum := (recent[len(recent)-1].Quote - recent[0].Quote) / recent[0].Quote

	variance := 0.0
	for _, t := range recent {
		d := t.Quote - avg
		variance += d * d
	}
	microVol := math.Sqrt(variance / float64(len(recent)))
	relVol := microVol / avg

	prediction := types.MicroUncertain
	switch {
	case relVol > 0.001 && momentum > 0.0005:
		prediction = types.MicroBullishCont
	case relVol > 0.001 && momentum < -0.0005:
		prediction = types.MicroBearishCont
	case relVol < 0.0003:
		prediction = types.MicroConsolidation
	case current.Body() < current.Range()*0.2:
		prediction = types.MicroDojiForming
	}

	return types.MicroStructure{
		Momentum:   momentum,
		Volatility: relVol,
		Prediction: prediction,
		Confidence: math.Min(float64(len(recent))/20, 1),
	}
}
