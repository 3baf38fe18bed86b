// Package market derives context from recent price action: the prevailing
// regime, crowd mood, time-of-day effects and tick-level micro structure.
// All functions are pure over their inputs so they can be replayed.
package market

import (
	"deriv-trading-bot/internal/ta"
	"deriv-trading-bot/internal/types"
)

const regimeMinCandles = 50

// ClassifyRegime buckets the market into one of the named regimes using the
// MA20/MA50 spread and 20-period volatility. Fewer than 50 candles yields
// INSUFFICIENT_DATA with zero confidence.
func ClassifyRegime(candles []types.Candle) types.Regime {
	if len(candles) < regimeMinCandles {
		return types.Regime{Type: types.RegimeInsufficientData, Volatility: 0, Trend: 0, Confidence: 0}
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	volatility := ta.Volatility(closes, 20)
	ma20 := ta.Last(ta.MA(closes, 20))
	ma50 := ta.Last(ta.MA(closes, 50))
	atr := ta.Last(ta.ATR(highs, lows, closes, 14))

	price := closes[len(closes)-1]

	trend := 0.0
	if ta.Ready(ma20) && ta.Ready(ma50) && ma50 != 0 {
		trend = (ma20 - ma50) / ma50
	}

	volPct := volatility / price
	highVol := volPct > 0.01
	lowVol := volPct < 0.003

	regimeType := types.RegimeNeutral
	confidence := 0.5

	switch {
	case abs(trend) > 0.02 && !lowVol:
		regimeType = types.RegimeStrongUptrend
		if trend < 0 {
			regimeType = types.RegimeStrongDowntrend
		}
		confidence = 0.85
	case abs(trend) > 0.01:
		regimeType = types.RegimeUptrend
		if trend < 0 {
			regimeType = types.RegimeDowntrend
		}
		confidence = 0.7
	case highVol:
		regimeType = types.RegimeHighVolatility
		confidence = 0.6
	case lowVol:
		regimeType = types.RegimeConsolidation
		confidence = 0.65
	}

	return types.Regime{
		Type:       regimeType,
		Volatility: volPct,
		Trend:      trend,
		Confidence: confidence,
		ATR:        atr,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
