package adaptive

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv-trading-bot/internal/types"
)

func history(n int, agent, result string) []types.TradeRecord {
	out := make([]types.TradeRecord, n)
	for i := range out {
		out[i] = types.TradeRecord{Agent: agent, Result: result}
	}
	return out
}

func TestApplyRegimePresets(t *testing.T) {
	w := DefaultWeights()
	w.ApplyRegime(types.Regime{Type: types.RegimeConsolidation}, 0.5)
	assert.InDelta(t, 1.3, w[WeightBB], 1e-9)
	assert.InDelta(t, 1.4, w[WeightRSI], 1e-9)
	assert.InDelta(t, 0.6, w[WeightMA], 1e-9)
	assert.InDelta(t, 0.5, w[WeightMomentum], 1e-9)
}

func TestApplyRegimeWinRateScaling(t *testing.T) {
	w := DefaultWeights()
	w.ApplyRegime(types.Regime{Type: types.RegimeHighVolatility}, 0.7)
	assert.InDelta(t, 1.5*1.1, w[WeightBB], 1e-9)

	w2 := DefaultWeights()
	w2.ApplyRegime(types.Regime{Type: types.RegimeNeutral}, 0.4)
	assert.InDelta(t, 0.85, w2[WeightMA], 1e-9)
}

func TestRefineNeedsHistory(t *testing.T) {
	w := DefaultWeights()
	before := w.Clone()
	w.Refine(history(49, "balanced", types.ResultWin), types.Regime{Type: types.RegimeNeutral})
	assert.Equal(t, before, w)
}

func TestRefineNormalizesSumAndClamps(t *testing.T) {
	w := Weights{WeightMA: 1.9, WeightRSI: 1.9, WeightBB: 1.9, WeightMomentum: 1.9, WeightVolume: 1.9}
	w.Refine(history(60, "balanced", types.ResultLoss), types.Regime{Type: types.RegimeStrongUptrend})

	sum := 0.0
	for k, v := range w {
		require.GreaterOrEqual(t, v, 0.3, k)
		require.LessOrEqual(t, v, 2.0, k)
		sum += v
	}
	// No weight hits a clamp bound in this fixture, so the normalization
	// lands exactly on the 4.0 target.
	assert.InDelta(t, 4.0, sum, 1e-9)
}

func TestRefineClampsExtremeWeights(t *testing.T) {
	// A single dominant weight gets pulled to the 2.0 ceiling while the rest
	// are pushed to the 0.3 floor; the clamps then move the sum off target.
	w := Weights{WeightMA: 40, WeightRSI: 0.01, WeightBB: 0.01, WeightMomentum: 0.01, WeightVolume: 0.01}
	w.Refine(history(60, "balanced", types.ResultWin), types.Regime{Type: types.RegimeNeutral})

	assert.InDelta(t, 2.0, w[WeightMA], 1e-9)
	for _, k := range []string{WeightRSI, WeightBB, WeightMomentum, WeightVolume} {
		assert.InDelta(t, 0.3, w[k], 1e-9, k)
	}
}

func TestSelectBestPrefersHigherWinRate(t *testing.T) {
	// Seed chosen so the first Float64 draw is above the explore threshold.
	p := NewPool(rand.New(rand.NewSource(1)))
	h := append(history(30, "trend_focus", types.ResultWin), history(30, "momentum_focus", types.ResultLoss)...)
	got := p.SelectBest(h)
	assert.Equal(t, "trend_focus", got.Name)
	assert.Equal(t, got, p.Active())
}

func TestSelectBestKeepsActiveWithThinHistory(t *testing.T) {
	p := NewPool(rand.New(rand.NewSource(1)))
	got := p.SelectBest(history(19, "trend_focus", types.ResultWin))
	assert.Equal(t, "balanced", got.Name)
}
