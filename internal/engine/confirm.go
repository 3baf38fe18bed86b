package engine

import (
	"strings"

	"deriv-trading-bot/internal/types"
)

// confirmation is the outcome of the multi-stage confirmation pass.
type confirmation struct {
	Decision    string
	Confidence  float64
	Adjustments []string
}

// confirmDecision runs the staged safety checks over a provisional action:
// loss-streak damping, same-direction loss damping, a volatility kill switch,
// liquidity downgrades, pattern contradiction, the trend-alignment veto and a
// final confidence floor. History is newest-first.
func confirmDecision(action string, pattern types.PatternResult, volatility float64, env types.Environment, recent []types.TradeRecord, confidence float64, temporal types.Temporal) confirmation {
	decision := action
	adjustments := []string{}

	last := recent
	if len(last) > 5 {
		last = last[:5]
	}
	consecutiveLosses := 0
	for _, t := range last {
		if !t.Lost() {
			break
		}
		consecutiveLosses++
	}

	if consecutiveLosses >= 4 {
		confidence *= 0.8
		adjustments = append(adjustments, "Loss streak penalty")
		if (action == types.ActionStrongBuy || action == types.ActionStrongSell) && volatility > 0.015 {
			decision = types.ActionSell
			if strings.Contains(action, "BUY") {
				decision = types.ActionBuy
			}
			adjustments = append(adjustments, "Downgraded from STRONG to regular")
		}
	}

	sameDirection := 0
	sameDirLosses := 0
	for _, t := range last {
		if t.Decision != action {
			continue
		}
		sameDirection++
		if t.Lost() {
			sameDirLosses++
		}
	}
	if sameDirLosses >= 2 && sameDirection >= 3 {
		confidence *= 0.85
		adjustments = append(adjustments, "Same-direction loss penalty")
	}

	if volatility > 0.025 && consecutiveLosses >= 3 {
		decision = types.ActionHold
		confidence = 0
		adjustments = append(adjustments, "High volatility + losses -> HOLD")
	}

	if temporal.LiquidityScore < 0.7 && (action == types.ActionStrongBuy || action == types.ActionStrongSell) {
		decision = types.ActionSell
		if strings.Contains(action, "BUY") {
			decision = types.ActionBuy
		}
		confidence *= 0.9
		adjustments = append(adjustments, "Low liquidity downgrade")
	}

	direction := types.SignalNeutral
	if strings.Contains(action, "BUY") {
		direction = types.SignalBullish
	} else if strings.Contains(action, "SELL") {
		direction = types.SignalBearish
	}
	if strings.Contains(pattern.Signal, "BULLISH") && direction == types.SignalBearish ||
		strings.Contains(pattern.Signal, "BEARISH") && direction == types.SignalBullish {
		confidence *= 0.85
		adjustments = append(adjustments, "Pattern-decision conflict")
	}

	if env.Trend == TrendUp && env.Strength > 0.7 && strings.Contains(decision, "SELL") {
		decision = types.ActionHold
		confidence = 0
		adjustments = append(adjustments, "Vetoed SELL against strong uptrend")
	} else if env.Trend == TrendDown && env.Strength > 0.7 && strings.Contains(decision, "BUY") {
		decision = types.ActionHold
		confidence = 0
		adjustments = append(adjustments, "Vetoed BUY against strong downtrend")
	}

	if confidence < 0.45 && decision != types.ActionHold {
		decision = types.ActionHold
		adjustments = append(adjustments, "Confidence below threshold")
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	if len(adjustments) == 0 {
		adjustments = []string{"No adjustments"}
	}
	return confirmation{Decision: decision, Confidence: confidence, Adjustments: adjustments}
}
