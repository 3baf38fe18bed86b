package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv-trading-bot/internal/types"
)

func TestPerformanceAnalyticsEmptyHistory(t *testing.T) {
	assert.Nil(t, PerformanceAnalytics(nil))
}

func TestPerformanceAnalyticsBuckets(t *testing.T) {
	history := []types.TradeRecord{
		{Result: types.ResultWin, Profit: 8.5, Regime: types.RegimeStrongUptrend, Agent: "trend_focus", Mood: "BULLISH", Session: "US", RiskCategory: RiskModerate, Confidence: 0.8},
		{Result: types.ResultLoss, Profit: -10, Regime: types.RegimeStrongUptrend, Agent: "trend_focus", Mood: "BULLISH", Session: "US", RiskCategory: RiskHigh, Confidence: 0.6},
		{Result: types.ResultWon, Profit: 7, Regime: types.RegimeConsolidation, Agent: "balanced", Mood: "NEUTRAL", Session: "LONDON", Confidence: 0.7},
		{Result: types.ResultLost, Profit: -10, Regime: types.RegimeConsolidation, Agent: "balanced", Mood: "NEUTRAL", Session: "", Confidence: 0.7},
	}

	a := PerformanceAnalytics(history)
	require.NotNil(t, a)

	assert.Equal(t, 4, a.TotalTrades)
	assert.Equal(t, 2, a.Wins)
	assert.Equal(t, 2, a.Losses)
	assert.Equal(t, 0.5, a.WinRate)
	assert.InDelta(t, -4.5, a.TotalProfit, 1e-9)

	up := a.ByRegime[types.RegimeStrongUptrend]
	assert.Equal(t, 2, up.Trades)
	assert.Equal(t, 0.5, up.WinRate)
	assert.InDelta(t, -1.5, up.Profit, 1e-9)

	assert.Equal(t, 2, a.ByAgent["trend_focus"].Trades)
	assert.Equal(t, 1, a.ByRisk[RiskHigh].Trades)

	// empty bucket keys are skipped, not grouped under ""
	_, ok := a.BySession[""]
	assert.False(t, ok)
	assert.Equal(t, 1, a.BySession["LONDON"].Trades)

	assert.Equal(t, 4, a.Recent.Trades)
	assert.InDelta(t, 0.7, a.Recent.AvgConfidence, 1e-9)
}
