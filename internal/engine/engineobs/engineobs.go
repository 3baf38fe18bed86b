package engineobs

import (
	"context"
	"time"

	"deriv-trading-bot/internal/interfaces"
	"deriv-trading-bot/internal/logger"
	"deriv-trading-bot/internal/trace"
	"deriv-trading-bot/internal/types"
)

// observableDecider wraps a Decider with observability (logging & tracing)
type observableDecider struct {
	decider interfaces.Decider
}

// Compile-time interface check
var _ interfaces.Decider = (*observableDecider)(nil)

// Wrap wraps a decider with observability middleware
func Wrap(d interfaces.Decider) interfaces.Decider {
	return &observableDecider{
		decider: d,
	}
}

func (od *observableDecider) Decide(candles []types.Candle, ticks []types.Tick, history []types.TradeRecord, lastTrade *types.TradeRecord) *types.Decision {
	ctx, span := trace.StartSpan(context.Background(), "engine.Decide")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting decision cycle",
		"candles", len(candles),
		"ticks", len(ticks),
		"history", len(history),
	)

	d := od.decider.Decide(candles, ticks, history, lastTrade)
	if d == nil {
		logger.WarnSkip(ctx, 1, "Decision cycle produced no decision",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	logger.InfoSkip(ctx, 1, "Decision cycle completed",
		"action", d.Action,
		"confidence", d.Confidence,
		"composite", d.CompositeSignal,
		"regime", d.Regime.Type,
		"agent", d.Agent,
		"reason", d.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return d
}
