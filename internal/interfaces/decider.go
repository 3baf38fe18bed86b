package interfaces

import (
	"deriv-trading-bot/internal/types"
)

// Decider produces one trading decision per cycle from the candle window, the
// tick buffer and the trade history (newest-first).
type Decider interface {
	Decide(candles []types.Candle, ticks []types.Tick, history []types.TradeRecord, lastTrade *types.TradeRecord) *types.Decision
}
