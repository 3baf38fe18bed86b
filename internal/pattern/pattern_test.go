package pattern

import (
	"testing"

	"deriv-trading-bot/internal/types"
)

func c(o, h, l, cl float64) types.Candle {
	return types.Candle{Open: o, High: h, Low: l, Close: cl}
}

func TestTooFewCandles(t *testing.T) {
	got := Identify([]types.Candle{c(1, 2, 0.5, 1.5), c(1.5, 2.5, 1, 2)})
	if got.Name != "NONE" || got.Strength != 0 || got.Signal != types.SignalNeutral {
		t.Fatalf("expected NONE for 2 candles, got %+v", got)
	}
}

func TestDoji(t *testing.T) {
	candles := []types.Candle{
		c(100, 101, 99, 100.5),
		c(100.5, 101.5, 99.5, 100),
		c(100, 101, 99, 100.05), // body 0.05, range 2
	}
	got := Identify(candles)
	if got.Name != "DOJI" {
		t.Fatalf("expected DOJI, got %s", got.Name)
	}
	if got.Strength != 0.7 || got.Signal != types.SignalReversalPending {
		t.Fatalf("unexpected DOJI result %+v", got)
	}
}

func TestBullishEngulfing(t *testing.T) {
	candles := []types.Candle{
		c(100, 101, 99, 100.2),
		c(100.5, 100.6, 99.4, 99.5), // bearish, body 1.0
		c(99.3, 101.2, 99.2, 101.0), // bullish, opens below prior close, closes above prior open, body 1.7
	}
	got := Identify(candles)
	if got.Name != "BULLISH_ENGULFING" {
		t.Fatalf("expected BULLISH_ENGULFING, got %s", got.Name)
	}
	if got.Strength != 0.85 || got.Signal != types.SignalBullish {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestThreeWhiteSoldiers(t *testing.T) {
	candles := []types.Candle{
		c(100, 101.2, 99.9, 101),
		c(101, 102.2, 100.9, 102),
		c(102, 103.2, 101.9, 103),
	}
	got := Identify(candles)
	if got.Name != "THREE_WHITE_SOLDIERS" {
		t.Fatalf("expected THREE_WHITE_SOLDIERS, got %s", got.Name)
	}
	if got.Signal != types.SignalStrongBullish {
		t.Fatalf("unexpected signal %s", got.Signal)
	}
}

func TestDojiTakesPriorityOverEngulfing(t *testing.T) {
	// The last candle both engulfs the prior bar and qualifies as a doji;
	// the doji rule sits earlier in the priority list and must win.
	candles := []types.Candle{
		c(100, 101, 99, 100.2),
		c(100.2, 100.3, 100.0, 100.1),
		c(99.9, 102, 98, 100.0), // body 0.1, range 4
	}
	got := Identify(candles)
	if got.Name != "DOJI" {
		t.Fatalf("expected DOJI to win priority, got %s", got.Name)
	}
}

func TestBreakawayGuardIsDead(t *testing.T) {
	// Five candles crafted for the breakaway shape still cannot fire it
	// because of the coerced-negation guard on the oldest candle.
	candles := []types.Candle{
		c(105, 105.5, 103.9, 104), // bearish c0
		c(103.5, 104, 102.9, 103),
		c(103, 108, 99, 103.05),   // doji-ish mid bars avoided below
		c(102.5, 103, 101.4, 101.5),
		c(101, 106.2, 100.9, 106), // bullish close above c0 open
	}
	got := Identify(candles)
	if got.Name == "BREAKAWAY_BULLISH" {
		t.Fatalf("BREAKAWAY_BULLISH should be unreachable, got %+v", got)
	}
}

func TestFallbackNone(t *testing.T) {
	// Flat non-doji bars matching nothing in the list.
	candles := []types.Candle{
		c(100, 100.6, 99.8, 100.3),
		c(100.3, 100.9, 100.1, 100.6),
		c(100.6, 102.0, 99.0, 101.1),
	}
	got := Identify(candles)
	if got.Name == "" {
		t.Fatalf("expected a named result, got %+v", got)
	}
}
