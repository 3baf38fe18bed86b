// Package ta implements the indicator math used by the decision engine.
// All series functions return slices aligned index-for-index with the input;
// entries with insufficient lookback are math.NaN() rather than an error.
package ta

import "math"

// Ready reports whether an indicator value is defined.
func Ready(v float64) bool { return !math.IsNaN(v) }

// Last returns the final value of a series, or NaN for an empty series.
func Last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// MA is a trailing simple moving average. Entries before period-1 are NaN.
func MA(values []float64, period int) []float64 {
	res := make([]float64, len(values))
	if period <= 0 {
		for i := range res {
			res[i] = math.NaN()
		}
		return res
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i < period-1 {
			res[i] = math.NaN()
			continue
		}
		res[i] = sum / float64(period)
	}
	return res
}

// EMA seeds from the first value and is defined from index 0.
func EMA(values []float64, period int) []float64 {
	res := make([]float64, len(values))
	if len(values) == 0 {
		return res
	}
	k := 2.0 / float64(period+1)
	res[0] = values[0]
	for i := 1; i < len(values); i++ {
		res[i] = values[i]*k + res[i-1]*(1-k)
	}
	return res
}

// RSI uses Wilder's smoothed average gain/loss. The first defined value is at
// index == period; a zero average loss yields 100.
func RSI(values []float64, period int) []float64 {
	res := make([]float64, len(values))
	for i := range res {
		res[i] = math.NaN()
	}
	if period <= 0 || len(values) <= period {
		return res
	}
	gains := make([]float64, len(values)-1)
	losses := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	res[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(values); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i-1]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i-1]) / float64(period)
		res[i] = rsiValue(avgGain, avgLoss)
	}
	return res
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// Band is one Bollinger entry. All three fields are NaN while not ready.
type Band struct {
	Upper, Middle, Lower float64
}

// Ready reports whether the band is defined.
func (b Band) Ready() bool { return !math.IsNaN(b.Middle) }

// Bollinger returns trailing mean ± mult·stddev (population variance).
func Bollinger(values []float64, period int, mult float64) []Band {
	res := make([]Band, len(values))
	nan := math.NaN()
	for i := range values {
		if i < period-1 {
			res[i] = Band{nan, nan, nan}
			continue
		}
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)
		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		variance /= float64(period)
		sd := math.Sqrt(variance)
		res[i] = Band{Upper: mean + mult*sd, Middle: mean, Lower: mean - mult*sd}
	}
	return res
}

// MACDResult carries the three MACD series.
type MACDResult struct {
	Line, Signal, Histogram []float64
}

// MACD computes EMA(fast)-EMA(slow), its EMA(signal) and the histogram.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	line := make([]float64, len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := EMA(line, signal)
	hist := make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}

// ATR seeds with a simple average of the first `period` true ranges, then
// applies Wilder's smoothing. Entries before index `period` are NaN.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	if len(highs) != n || len(lows) != n || period <= 0 || n < period+1 {
		return res
	}
	tr := make([]float64, n) // tr[0] unused, true range needs a previous close
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	seed := 0.0
	for i := 1; i <= period; i++ {
		seed += tr[i]
	}
	res[period] = seed / float64(period)
	for i := period + 1; i < n; i++ {
		res[i] = (res[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return res
}

// Volatility is the population stddev of the trailing window, 0 when there is
// not enough history.
func Volatility(closes []float64, period int) float64 {
	if len(closes) < period || period <= 0 {
		return 0
	}
	window := closes[len(closes)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)
	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(period))
}
