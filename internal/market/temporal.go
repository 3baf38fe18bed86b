package market

import (
	"time"

	"deriv-trading-bot/internal/types"
)

// Session labels, UTC based.
const (
	SessionAsian  = "ASIAN"
	SessionLondon = "LONDON"
	SessionUS     = "US"
)

// TemporalContext scores the given wall-clock moment for liquidity and
// expected volatility. All boundaries are UTC.
func TemporalContext(now time.Time) types.Temporal {
	utc := now.UTC()
	hour := utc.Hour()
	day := int(utc.Weekday())
	minute := utc.Minute()

	liquidity := 1.0
	volExpect := 1.0
	confMod := 1.0

	if hour >= 0 && hour < 3 {
		liquidity = 0.6
		confMod = 0.85
	}
	if hour >= 23 || hour < 8 {
		volExpect = 0.8
	}
	if hour == 8 {
		volExpect = 1.4
	}
	if hour >= 13 && hour <= 21 {
		liquidity = 1.2
		volExpect = 1.3
	}
	if day == 0 || day == 6 {
		liquidity *= 0.7
		confMod *= 0.9
	}
	// Hour transitions carry extra uncertainty.
	if minute < 5 || minute > 55 {
		confMod *= 0.95
	}

	session := SessionAsian
	switch {
	case hour >= 13 && hour <= 21:
		session = SessionUS
	case hour >= 8 && hour < 13:
		session = SessionLondon
	}

	return types.Temporal{
		Hour:                  hour,
		DayOfWeek:             day,
		LiquidityScore:        liquidity,
		VolatilityExpectation: volExpect,
		ConfidenceModifier:    confMod,
		Session:               session,
	}
}
