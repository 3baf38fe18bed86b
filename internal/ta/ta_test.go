package ta

import (
	"math"
	"testing"
)

func synthetic(n int, start, step float64) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	return vals
}

func TestMANotReadyPrefix(t *testing.T) {
	vals := synthetic(10, 100, 1)
	res := MA(vals, 5)
	for i := 0; i < 4; i++ {
		if Ready(res[i]) {
			t.Errorf("expected index %d to be not ready", i)
		}
	}
	if !Ready(res[4]) {
		t.Fatal("expected index 4 to be ready")
	}
	// mean of 100..104
	if math.Abs(res[4]-102) > 1e-9 {
		t.Errorf("expected MA 102, got %f", res[4])
	}
}

func TestMAShorterThanPeriod(t *testing.T) {
	res := MA(synthetic(3, 1, 1), 10)
	for i, v := range res {
		if Ready(v) {
			t.Errorf("index %d should be not ready for short input", i)
		}
	}
}

func TestEMASeedAndRecurrence(t *testing.T) {
	vals := []float64{10, 12, 11, 13}
	res := EMA(vals, 3)
	if res[0] != 10 {
		t.Fatalf("EMA seed should be first value, got %f", res[0])
	}
	k := 2.0 / 4.0
	want := vals[1]*k + res[0]*(1-k)
	if math.Abs(res[1]-want) > 1e-9 {
		t.Errorf("EMA[1] = %f, want %f", res[1], want)
	}
}

func TestRSIBoundsAndZeroLoss(t *testing.T) {
	// Monotonically rising closes: average loss is zero, RSI pegged at 100.
	vals := synthetic(30, 100, 0.5)
	res := RSI(vals, 14)
	for i := 0; i < 14; i++ {
		if Ready(res[i]) {
			t.Errorf("RSI index %d should be not ready", i)
		}
	}
	for i := 14; i < len(res); i++ {
		if res[i] != 100 {
			t.Errorf("RSI with zero losses should be 100, got %f at %d", res[i], i)
		}
	}

	// Mixed series stays within [0, 100].
	mixed := make([]float64, 60)
	price := 100.0
	for i := range mixed {
		if i%3 == 0 {
			price -= 0.4
		} else {
			price += 0.3
		}
		mixed[i] = price
	}
	for i, v := range RSI(mixed, 14) {
		if !Ready(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("RSI out of range at %d: %f", i, v)
		}
	}
}

func TestBollingerNotReadyAndBands(t *testing.T) {
	vals := synthetic(25, 50, 0.2)
	res := Bollinger(vals, 20, 2)
	for i := 0; i < 19; i++ {
		if res[i].Ready() {
			t.Errorf("band %d should be not ready", i)
		}
	}
	b := res[len(res)-1]
	if !b.Ready() {
		t.Fatal("last band should be ready")
	}
	if b.Upper <= b.Middle || b.Middle <= b.Lower {
		t.Errorf("band ordering violated: %+v", b)
	}
}

func TestATRInsufficientAndSeed(t *testing.T) {
	highs := synthetic(10, 101, 1)
	lows := synthetic(10, 99, 1)
	closes := synthetic(10, 100, 1)

	short := ATR(highs[:5], lows[:5], closes[:5], 14)
	for i, v := range short {
		if Ready(v) {
			t.Errorf("ATR index %d should be not ready for short input", i)
		}
	}

	res := ATR(highs, lows, closes, 5)
	for i := 0; i < 5; i++ {
		if Ready(res[i]) {
			t.Errorf("ATR index %d should be not ready", i)
		}
	}
	if !Ready(res[5]) {
		t.Fatal("ATR seed index should be ready")
	}
}

func TestDeterminism(t *testing.T) {
	closes := make([]float64, 60)
	price := 1000.0
	for i := range closes {
		if i%2 == 0 {
			price *= 1.001
		} else {
			price *= 0.9995
		}
		closes[i] = price
	}
	highs := make([]float64, 60)
	lows := make([]float64, 60)
	for i, c := range closes {
		highs[i] = c * 1.0005
		lows[i] = c * 0.9995
	}

	r1, r2 := RSI(closes, 14), RSI(closes, 14)
	m1, m2 := MACD(closes, 12, 26, 9), MACD(closes, 12, 26, 9)
	a1, a2 := ATR(highs, lows, closes, 14), ATR(highs, lows, closes, 14)
	b1, b2 := Bollinger(closes, 20, 2), Bollinger(closes, 20, 2)

	for i := range closes {
		if Ready(r1[i]) != Ready(r2[i]) || (Ready(r1[i]) && r1[i] != r2[i]) {
			t.Fatalf("RSI not deterministic at %d", i)
		}
		if m1.Histogram[i] != m2.Histogram[i] {
			t.Fatalf("MACD not deterministic at %d", i)
		}
		if Ready(a1[i]) != Ready(a2[i]) || (Ready(a1[i]) && a1[i] != a2[i]) {
			t.Fatalf("ATR not deterministic at %d", i)
		}
		if b1[i] != b2[i] {
			t.Fatalf("Bollinger not deterministic at %d", i)
		}
	}
}

func TestVolatilityInsufficientData(t *testing.T) {
	if v := Volatility(synthetic(5, 1, 1), 20); v != 0 {
		t.Errorf("expected 0 volatility on short series, got %f", v)
	}
	if v := Volatility(synthetic(40, 100, 0.5), 20); v <= 0 {
		t.Errorf("expected positive volatility, got %f", v)
	}
}
