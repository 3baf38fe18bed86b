package market

import (
	"deriv-trading-bot/internal/types"
)

// AnalyzeMood blends the up-move ratio over the whole window with a
// volume-weighted sentiment of the last 20 candles into a composite in [0,1].
// Above 0.62 reads BULLISH, below 0.38 BEARISH, in between NEUTRAL with
// strength falling off toward the edges of the band.
func AnalyzeMood(candles []types.Candle) types.Mood {
	if len(candles) < 10 {
		return types.Mood{Mood: types.SignalNeutral, Strength: 0, Ratio: 0.5}
	}

	upMoves, downMoves := 0, 0
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			upMoves++
		case candles[i].Close < candles[i-1].Close:
			downMoves++
		}
	}
	denom := upMoves + downMoves
	if denom == 0 {
		denom = 1
	}
	moodRatio := float64(upMoves) / float64(denom)

	recent := candles
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	sentiment := 0.0
	for i := 1; i < len(recent); i++ {
		direction := -1.0
		if recent[i].IsBullish() {
			direction = 1.0
		}
		weight := 1.0
		if idx := len(candles) - 20 + i; idx >= 0 && idx < len(candles) && candles[idx].Vol != 0 {
			weight = candles[idx].Vol
		}
		sentiment += direction * weight
	}
	normalized := sentiment / float64(len(recent))

	composite := moodRatio*0.6 + (normalized+1)/2*0.4

	mood := types.SignalNeutral
	strength := 0.0
	switch {
	case composite > 0.62:
		mood = types.SignalBullish
		strength = (composite - 0.62) / 0.38
	case composite < 0.38:
		mood = types.SignalBearish
		strength = (0.38 - composite) / 0.38
	default:
		strength = 1 - abs(composite-0.5)*2
	}
	if strength > 1 {
		strength = 1
	}

	return types.Mood{Mood: mood, Strength: strength, Ratio: composite}
}
