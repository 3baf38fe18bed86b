package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv-trading-bot/internal/ta"
	"deriv-trading-bot/internal/types"
)

func risingCandles(n int, start, step float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := range out {
		o := start + float64(i)*step
		c := o + step*0.8
		out[i] = types.Candle{
			Epoch: int64(i * 60),
			Open:  o,
			High:  c + step*0.1,
			Low:   o - step*0.1,
			Close: c,
		}
	}
	return out
}

func flatCandles(n int, price float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := range out {
		out[i] = types.Candle{
			Epoch: int64(i * 60),
			Open:  price, High: price, Low: price, Close: price,
		}
	}
	return out
}

func testEngine() *Engine {
	clock := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)
	return New(IndicatorParams{}, rand.New(rand.NewSource(1)), func() time.Time { return clock })
}

func TestDecideInsufficientData(t *testing.T) {
	e := testEngine()
	d := e.Decide(risingCandles(30, 100, 0.5), nil, nil, nil)
	require.NotNil(t, d)
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, "Insufficient data", d.Reason)
	assert.Zero(t, d.Confidence)
}

func TestDecideLowVolatilityHolds(t *testing.T) {
	e := testEngine()
	d := e.Decide(flatCandles(60, 100), nil, nil, nil)
	require.NotNil(t, d)
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, "Extremely low volatility - no edge", d.Reason)
	assert.Zero(t, d.Confidence)
}

func TestDecideUptrendNeverSells(t *testing.T) {
	e := testEngine()
	d := e.Decide(risingCandles(60, 100, 0.5), nil, nil, nil)
	require.NotNil(t, d)
	assert.Equal(t, types.RegimeStrongUptrend, d.Regime.Type)
	assert.False(t, d.IsSell(), "strong uptrend must veto sells, got %s (%s)", d.Action, d.Reason)
}

func TestDecideRepeatLossPenalty(t *testing.T) {
	candles := risingCandles(60, 100, 0.5)

	base := testEngine().Decide(candles, nil, nil, nil)
	require.NotNil(t, base)
	if base.Action == types.ActionHold {
		t.Skip("fixture did not produce a directional decision")
	}

	last := &types.TradeRecord{Decision: base.Action, Result: types.ResultLoss}
	penalized := testEngine().Decide(candles, nil, nil, last)
	require.NotNil(t, penalized)
	if penalized.Action == base.Action {
		assert.Less(t, penalized.Confidence, base.Confidence,
			"repeating the last losing direction must cost confidence")
		assert.Contains(t, penalized.Adjustments, "Penalized: repeating last losing direction")
	}
}

func TestDecideMemoryIsBounded(t *testing.T) {
	e := testEngine()
	candles := risingCandles(60, 100, 0.5)
	for i := 0; i < decisionMemoryCap+10; i++ {
		e.Decide(candles, nil, nil, nil)
	}
	assert.LessOrEqual(t, len(e.memory), decisionMemoryCap)
}

func TestDecideUsesConfiguredPeriods(t *testing.T) {
	candles := risingCandles(60, 100, 0.5)
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	clock := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)
	e := New(IndicatorParams{MAFast: 10, BBWindow: 12}, rand.New(rand.NewSource(1)), func() time.Time { return clock })
	d := e.Decide(candles, nil, nil, nil)
	require.NotNil(t, d)

	assert.InDelta(t, ta.Last(ta.MA(closes, 10)), d.Indicators.MA14, 1e-9)
	bb := ta.Bollinger(closes, 12, 2)
	assert.InDelta(t, bb[len(bb)-1].Middle, d.Indicators.BB.Middle, 1e-9)
}

func TestDecidePopulatesContext(t *testing.T) {
	e := testEngine()
	d := e.Decide(risingCandles(60, 100, 0.5), nil, nil, nil)
	require.NotNil(t, d)
	assert.NotEmpty(t, d.Agent)
	assert.NotEmpty(t, d.Mood.Mood)
	assert.NotEmpty(t, d.Temporal.Session)
	assert.Len(t, d.Weights, 4)
	assert.NotZero(t, d.Indicators.MA14)
}
