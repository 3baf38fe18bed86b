// Package pattern classifies the most recent candles into one of the named
// candlestick patterns. Rules are evaluated as a fixed priority list and the
// first match wins; reordering the list changes observable behavior, so the
// order is part of the contract.
package pattern

import (
	"deriv-trading-bot/internal/types"
)

// None is returned when there is no match or not enough candles.
var None = types.PatternResult{Name: "NONE", Strength: 0, Signal: types.SignalNeutral}

// window exposes the last five candles. c3 is the latest bar, c1 the bar two
// back; c0 and c4 are only populated when five candles are available.
type window struct {
	c0, c4, c1, c2, c3 types.Candle
	haveFive           bool
}

type rule struct {
	name     string
	strength float64
	signal   string
	needFive bool
	match    func(w window) bool
}

// Identify runs the priority list over the last up-to-five candles.
// Fewer than three candles yields None.
func Identify(candles []types.Candle) types.PatternResult {
	if len(candles) < 3 {
		return None
	}
	n := len(candles)
	w := window{
		c1: candles[n-3],
		c2: candles[n-2],
		c3: candles[n-1],
	}
	if n >= 5 {
		w.c0 = candles[n-5]
		w.c4 = candles[n-4]
		w.haveFive = true
	}
	for _, r := range rules {
		if r.needFive && !w.haveFive {
			continue
		}
		if r.match(w) {
			return types.PatternResult{Name: r.name, Strength: r.strength, Signal: r.signal}
		}
	}
	return None
}

// negatedCloseGTOpen replicates the source's "!close > open" guard, where the
// negated close coerces to 0 or 1 before the comparison. For any positive
// open price this is false, which makes the rules using it effectively dead;
// kept literally so the priority list's observable behavior is unchanged.
func negatedCloseGTOpen(c types.Candle) bool {
	v := 0.0
	if c.Close == 0 {
		v = 1.0
	}
	return v > c.Open
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var rules = []rule{
	{"DOJI", 0.7, types.SignalReversalPending, false, func(w window) bool {
		return w.c3.Body() < w.c3.Range()*0.1 && w.c3.Range() > 0
	}},
	{"HAMMER", 0.8, types.SignalBullish, false, func(w window) bool {
		return w.c3.LowerWick() > w.c3.Body()*2 && w.c3.UpperWick() < w.c3.Body()*0.3 && w.c3.IsBullish()
	}},
	{"SHOOTING_STAR", 0.8, types.SignalBearish, false, func(w window) bool {
		return w.c3.UpperWick() > w.c3.Body()*2 && w.c3.LowerWick() < w.c3.Body()*0.3 && !w.c3.IsBullish()
	}},
	{"BULLISH_ENGULFING", 0.85, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c3.Open < w.c2.Close && w.c3.Close > w.c2.Open && w.c3.Body() > w.c2.Body()*1.2
	}},
	{"BEARISH_ENGULFING", 0.85, types.SignalBearish, false, func(w window) bool {
		return w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c3.Open > w.c2.Close && w.c3.Close < w.c2.Open && w.c3.Body() > w.c2.Body()*1.2
	}},
	{"THREE_WHITE_SOLDIERS", 0.9, types.SignalStrongBullish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c2.Close > w.c1.Close && w.c3.Close > w.c2.Close
	}},
	{"THREE_BLACK_CROWS", 0.9, types.SignalStrongBearish, false, func(w window) bool {
		return !w.c1.IsBullish() && !w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Close < w.c1.Close && w.c3.Close < w.c2.Close
	}},
	{"MORNING_STAR", 0.88, types.SignalStrongBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && w.c2.Body() < w.c2.Range()*0.3 && w.c3.IsBullish() &&
			w.c2.Close < w.c1.Close && w.c3.Close > (w.c1.Open+w.c1.Close)/2
	}},
	{"EVENING_STAR", 0.88, types.SignalStrongBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.Body() < w.c2.Range()*0.3 && !w.c3.IsBullish() &&
			w.c2.Close > w.c1.Close && w.c3.Close < (w.c1.Open+w.c1.Close)/2
	}},
	{"PIERCING_PATTERN", 0.82, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && w.c3.IsBullish() && w.c3.Open < w.c2.Low &&
			w.c3.Close > (w.c2.Open+w.c2.Close)/2 && w.c3.Close < w.c2.Open
	}},
	{"DARK_CLOUD_COVER", 0.82, types.SignalBearish, false, func(w window) bool {
		return w.c2.IsBullish() && !w.c3.IsBullish() && w.c3.Open > w.c2.High &&
			w.c3.Close < (w.c2.Open+w.c2.Close)/2 && w.c3.Close > w.c2.Open
	}},
	{"BULLISH_HARAMI", 0.75, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && w.c3.IsBullish() && w.c3.Open > w.c2.Close &&
			w.c3.Close < w.c2.Open && w.c3.Body() < w.c2.Body()*0.5
	}},
	{"BEARISH_HARAMI", 0.75, types.SignalBearish, false, func(w window) bool {
		return w.c2.IsBullish() && !w.c3.IsBullish() && w.c3.Open < w.c2.Close &&
			w.c3.Close > w.c2.Open && w.c3.Body() < w.c2.Body()*0.5
	}},
	{"TWEEZER_BOTTOM", 0.78, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && w.c3.IsBullish() && abs(w.c2.Low-w.c3.Low) < w.c2.Range()*0.05
	}},
	{"TWEEZER_TOP", 0.78, types.SignalBearish, false, func(w window) bool {
		return w.c2.IsBullish() && !w.c3.IsBullish() && abs(w.c2.High-w.c3.High) < w.c2.Range()*0.05
	}},
	{"HANGING_MAN", 0.76, types.SignalBearish, false, func(w window) bool {
		return w.c3.LowerWick() > w.c3.Body()*2 && w.c3.UpperWick() < w.c3.Body()*0.5 &&
			w.c3.IsBullish() && w.c3.Close > w.c2.Close
	}},
	{"INVERTED_HAMMER", 0.76, types.SignalBullish, false, func(w window) bool {
		return w.c3.UpperWick() > w.c3.Body()*2 && w.c3.LowerWick() < w.c3.Body()*0.5 &&
			w.c3.IsBullish() && w.c3.Close < w.c2.Close
	}},
	{"DRAGONFLY_DOJI", 0.77, types.SignalBullish, false, func(w window) bool {
		return w.c3.Body() < w.c3.Range()*0.1 && w.c3.LowerWick() > w.c3.Range()*0.6 &&
			w.c3.UpperWick() < w.c3.Range()*0.1
	}},
	{"GRAVESTONE_DOJI", 0.77, types.SignalBearish, false, func(w window) bool {
		return w.c3.Body() < w.c3.Range()*0.1 && w.c3.UpperWick() > w.c3.Range()*0.6 &&
			w.c3.LowerWick() < w.c3.Range()*0.1
	}},
	{"LONG_LEGGED_DOJI", 0.72, types.SignalReversalPending, false, func(w window) bool {
		return w.c3.Body() < w.c3.Range()*0.1 && w.c3.LowerWick() > w.c3.Range()*0.3 &&
			w.c3.UpperWick() > w.c3.Range()*0.3
	}},
	{"BULLISH_MARUBOZU", 0.83, types.SignalStrongBullish, false, func(w window) bool {
		return w.c3.IsBullish() && w.c3.Body() > w.c3.Range()*0.95
	}},
	{"BEARISH_MARUBOZU", 0.83, types.SignalStrongBearish, false, func(w window) bool {
		return !w.c3.IsBullish() && w.c3.Body() > w.c3.Range()*0.95
	}},
	{"SPINNING_TOP", 0.65, types.SignalNeutral, false, func(w window) bool {
		return w.c3.Body() < w.c3.Range()*0.3 && w.c3.UpperWick() > w.c3.Body() && w.c3.LowerWick() > w.c3.Body()
	}},
	{"THREE_INSIDE_UP", 0.86, types.SignalStrongBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && !w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c2.Open > w.c1.Close && w.c2.Close < w.c1.Open &&
			w.c3.Close > w.c1.Open && w.c2.Body() < w.c1.Body()*0.5
	}},
	{"THREE_INSIDE_DOWN", 0.86, types.SignalStrongBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Open < w.c1.Close && w.c2.Close > w.c1.Open &&
			w.c3.Close < w.c1.Open && w.c2.Body() < w.c1.Body()*0.5
	}},
	{"THREE_OUTSIDE_UP", 0.87, types.SignalStrongBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && !w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c2.Open < w.c1.Close && w.c2.Close > w.c1.Open &&
			w.c3.Close > w.c2.Close && w.c2.Body() > w.c1.Body()
	}},
	{"THREE_OUTSIDE_DOWN", 0.87, types.SignalStrongBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Open > w.c1.Close && w.c2.Close < w.c1.Open &&
			w.c3.Close < w.c2.Close && w.c2.Body() > w.c1.Body()
	}},
	{"RISING_THREE_METHODS", 0.84, types.SignalBullish, true, func(w window) bool {
		return w.c0.IsBullish() && w.c3.IsBullish() &&
			!w.c1.IsBullish() && !w.c2.IsBullish() &&
			w.c3.Close > w.c0.Close && w.c1.High < w.c0.High
	}},
	{"FALLING_THREE_METHODS", 0.84, types.SignalBearish, true, func(w window) bool {
		return !w.c0.IsBullish() && !w.c3.IsBullish() &&
			w.c1.IsBullish() && w.c2.IsBullish() &&
			w.c3.Close < w.c0.Close && w.c1.Low > w.c0.Low
	}},
	{"ABANDONED_BABY_BULLISH", 0.92, types.SignalStrongBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && w.c2.Body() < w.c2.Range()*0.2 && w.c3.IsBullish() &&
			w.c2.High < w.c1.Low && w.c2.High < w.c3.Low
	}},
	{"ABANDONED_BABY_BEARISH", 0.92, types.SignalStrongBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.Body() < w.c2.Range()*0.2 && !w.c3.IsBullish() &&
			w.c2.Low > w.c1.High && w.c2.Low > w.c3.High
	}},
	{"UPSIDE_GAP_TWO_CROWS", 0.79, types.SignalBearish, false, func(w window) bool {
		return w.c1.IsBullish() && !w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Open > w.c1.Close && w.c3.Open > w.c2.Open && w.c3.Close < w.c2.Close
	}},
	{"MAT_HOLD", 0.81, types.SignalBullish, true, func(w window) bool {
		return w.c0.IsBullish() && w.c3.IsBullish() && !w.c1.IsBullish() && w.c3.Close > w.c0.Close
	}},
	{"BULLISH_BELT_HOLD", 0.74, types.SignalBullish, false, func(w window) bool {
		return w.c3.IsBullish() && w.c3.LowerWick() < w.c3.Body()*0.1 && w.c3.Body() > w.c3.Range()*0.7
	}},
	{"BEARISH_BELT_HOLD", 0.74, types.SignalBearish, false, func(w window) bool {
		return !w.c3.IsBullish() && w.c3.UpperWick() < w.c3.Body()*0.1 && w.c3.Body() > w.c3.Range()*0.7
	}},
	// Guarded by the coerced negation, so unreachable for positive prices.
	{"BREAKAWAY_BULLISH", 0.80, types.SignalBullish, true, func(w window) bool {
		return negatedCloseGTOpen(w.c0) && w.c3.IsBullish() && w.c3.Close > w.c0.Open
	}},
	{"KICKING_BULLISH", 0.89, types.SignalStrongBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c2.Body() > w.c2.Range()*0.9 && w.c3.Body() > w.c3.Range()*0.9 && w.c3.Open > w.c2.Close
	}},
	{"KICKING_BEARISH", 0.89, types.SignalStrongBearish, false, func(w window) bool {
		return w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Body() > w.c2.Range()*0.9 && w.c3.Body() > w.c3.Range()*0.9 && w.c3.Open < w.c2.Close
	}},
	// Same dead guard on the two oldest candles.
	{"LADDER_BOTTOM", 0.85, types.SignalBullish, true, func(w window) bool {
		return negatedCloseGTOpen(w.c0) && negatedCloseGTOpen(w.c4) && !w.c1.IsBullish() &&
			!w.c2.IsBullish() && w.c3.IsBullish() && w.c3.Close > w.c2.Open
	}},
	{"LADDER_TOP", 0.85, types.SignalBearish, true, func(w window) bool {
		return w.c0.IsBullish() && w.c4.IsBullish() && w.c1.IsBullish() &&
			w.c2.IsBullish() && !w.c3.IsBullish() && w.c3.Close < w.c2.Open
	}},
	{"CONCEALING_BABY_SWALLOW", 0.83, types.SignalBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && !w.c2.IsBullish() && !w.c3.IsBullish() &&
			w.c2.Open < w.c1.Open && w.c3.Open > w.c2.Close && w.c3.Close > w.c2.Open
	}},
	{"STICK_SANDWICH", 0.73, types.SignalBullish, false, func(w window) bool {
		return !w.c1.IsBullish() && w.c2.IsBullish() && !w.c3.IsBullish() &&
			abs(w.c1.Close-w.c3.Close) < w.c1.Body()*0.1
	}},
	{"HOMING_PIGEON", 0.71, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && !w.c3.IsBullish() && w.c3.Open < w.c2.Open &&
			w.c3.Close > w.c2.Close && w.c3.Body() < w.c2.Body()*0.7
	}},
	{"MATCHING_LOW", 0.70, types.SignalBullish, false, func(w window) bool {
		return !w.c2.IsBullish() && !w.c3.IsBullish() && abs(w.c2.Close-w.c3.Close) < w.c2.Body()*0.1
	}},
	{"DELIBERATION", 0.76, types.SignalBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c3.Body() < w.c2.Body() && w.c2.Body() < w.c1.Body() && w.c3.Close > w.c2.Close
	}},
	{"ADVANCE_BLOCK", 0.78, types.SignalBearish, false, func(w window) bool {
		return w.c1.IsBullish() && w.c2.IsBullish() && w.c3.IsBullish() &&
			w.c2.Body() < w.c1.Body() && w.c3.Body() < w.c2.Body() &&
			w.c2.UpperWick() > w.c1.UpperWick() && w.c3.UpperWick() > w.c2.UpperWick()
	}},
}
