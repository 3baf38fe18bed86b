// Package engine fuses indicators, patterns and market context into trade
// decisions, scores their risk and quality, and owns the contract-lock state
// machine. All state in here is touched only from the session's single event
// loop.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"deriv-trading-bot/internal/adaptive"
	"deriv-trading-bot/internal/market"
	"deriv-trading-bot/internal/pattern"
	"deriv-trading-bot/internal/ta"
	"deriv-trading-bot/internal/types"
)

const (
	decisionMinCandles = 50
	decisionMemoryCap  = 50
	volatilityFloor    = 0.002
)

// memoryEntry is one row of the bounded rolling decision memory.
type memoryEntry struct {
	Time            time.Time
	Decision        string
	Confidence      float64
	CompositeSignal float64
	Mood            string
	Regime          string
}

// IndicatorParams are the lookback periods used each decision cycle. Zero
// fields fall back to the defaults.
type IndicatorParams struct {
	MAFast    int
	MASlow    int
	RSIPeriod int
	BBWindow  int
	BBStdDev  float64
	ATRPeriod int
}

func (p IndicatorParams) withDefaults() IndicatorParams {
	if p.MAFast == 0 {
		p.MAFast = 14
	}
	if p.MASlow == 0 {
		p.MASlow = 50
	}
	if p.RSIPeriod == 0 {
		p.RSIPeriod = 14
	}
	if p.BBWindow == 0 {
		p.BBWindow = 20
	}
	if p.BBStdDev == 0 {
		p.BBStdDev = 2
	}
	if p.ATRPeriod == 0 {
		p.ATRPeriod = 14
	}
	return p
}

// Engine holds the adaptive strategy state shared across decision cycles.
type Engine struct {
	params  IndicatorParams
	weights adaptive.Weights
	pool    *adaptive.Pool
	regime  types.Regime
	memory  []memoryEntry
	now     func() time.Time
}

// New builds an engine with fresh weights and the default agent pool. The
// rand source drives agent exploration; the clock is injectable for tests.
func New(params IndicatorParams, rnd *rand.Rand, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		params:  params.withDefaults(),
		weights: adaptive.DefaultWeights(),
		pool:    adaptive.NewPool(rnd),
		regime:  types.Regime{Type: types.RegimeUnknown},
		now:     now,
	}
}

// Regime returns the regime computed by the most recent cycle.
func (e *Engine) Regime() types.Regime { return e.regime }

// Weights returns the live indicator weight set.
func (e *Engine) Weights() adaptive.Weights { return e.weights }

// ActiveAgent returns the currently selected decision agent.
func (e *Engine) ActiveAgent() *adaptive.Agent { return e.pool.Active() }

// Decide runs one full decision cycle over the candle window, the tick
// buffer, the trade history (newest-first) and the last-trade snapshot.
func (e *Engine) Decide(candles []types.Candle, ticks []types.Tick, history []types.TradeRecord, lastTrade *types.TradeRecord) *types.Decision {
	if len(candles) < decisionMinCandles {
		return &types.Decision{Action: types.ActionHold, Reason: "Insufficient data", Confidence: 0}
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	ma14 := ta.Last(ta.MA(closes, e.params.MAFast))
	ma50 := ta.Last(ta.MA(closes, e.params.MASlow))
	rsi := ta.Last(ta.RSI(closes, e.params.RSIPeriod))
	bb := ta.Bollinger(closes, e.params.BBWindow, e.params.BBStdDev)
	bbNow := bb[len(bb)-1]
	macd := ta.MACD(closes, 12, 26, 9)
	macdNow := ta.Last(macd.Histogram)
	volatility := ta.Volatility(closes, e.params.BBWindow) / closes[len(closes)-1]
	atrNow := ta.Last(ta.ATR(highs, lows, closes, e.params.ATRPeriod))

	e.regime = market.ClassifyRegime(candles)

	recentTrades := history
	if len(recentTrades) > 20 {
		recentTrades = recentTrades[:20]
	}
	winRate := 0.5
	if len(recentTrades) > 0 {
		wins := 0
		for _, t := range recentTrades {
			if t.Won() {
				wins++
			}
		}
		winRate = float64(wins) / float64(len(recentTrades))
	}

	e.weights.ApplyRegime(e.regime, winRate)
	e.weights.Refine(history, e.regime)

	agent := e.pool.SelectBest(history)
	effective := map[string]float64{
		adaptive.WeightMA:       e.weights[adaptive.WeightMA] * agent.Weights[adaptive.WeightMA],
		adaptive.WeightMomentum: e.weights[adaptive.WeightMomentum] * agent.Weights[adaptive.WeightMomentum],
		adaptive.WeightRSI:      e.weights[adaptive.WeightRSI] * agent.Weights[adaptive.WeightRSI],
		adaptive.WeightBB:       e.weights[adaptive.WeightBB] * agent.Weights[adaptive.WeightBB],
	}

	mood := market.AnalyzeMood(candles)
	temporal := market.TemporalContext(e.now())
	pat := pattern.Identify(candles)
	micro := market.AnalyzeMicroStructure(ticks, candles[len(candles)-1])

	price := closes[len(closes)-1]
	prevPrice := closes[len(closes)-2]
	rsiNow := rsi
	if !ta.Ready(rsiNow) {
		rsiNow = 50
	}
	if !ta.Ready(ma14) || !bbNow.Ready() {
		return &types.Decision{Action: types.ActionHold, Reason: "Indicators not ready", Confidence: 0}
	}

	snap := types.IndicatorSnapshot{
		MA14:       ma14,
		MA50:       ma50,
		RSI:        rsiNow,
		BB:         types.BollingerBand{Upper: bbNow.Upper, Middle: bbNow.Middle, Lower: bbNow.Lower},
		MACDHist:   macdNow,
		ATR:        atrNow,
		Volatility: volatility,
		Pattern:    pat,
		Micro:      micro,
	}

	env := assessEnvironment(price, ma14, ma50, rsiNow, snap.BB, volatility)

	trendSignal := -effective[adaptive.WeightMA]
	if price > ma14 {
		trendSignal = effective[adaptive.WeightMA]
	}
	momentumSignal := (price - prevPrice) / prevPrice * 1000 * effective[adaptive.WeightMomentum]
	rsiSignal := 0.0
	switch {
	case rsiNow < 30:
		rsiSignal = effective[adaptive.WeightRSI]
	case rsiNow > 70:
		rsiSignal = -effective[adaptive.WeightRSI]
	}
	bbSignal := 0.0
	switch {
	case price <= bbNow.Lower:
		bbSignal = effective[adaptive.WeightBB]
	case price >= bbNow.Upper:
		bbSignal = -effective[adaptive.WeightBB]
	}
	macdSignal := -0.8
	if macdNow > 0 {
		macdSignal = 0.8
	}
	patternSignal := 0.0
	switch pat.Signal {
	case types.SignalBullish, types.SignalStrongBullish:
		patternSignal = pat.Strength
	case types.SignalBearish, types.SignalStrongBearish:
		patternSignal = -pat.Strength
	}
	microSignal := 0.0
	switch micro.Prediction {
	case types.MicroBullishCont:
		microSignal = 0.6
	case types.MicroBearishCont:
		microSignal = -0.6
	case types.MicroReversalUp:
		microSignal = 0.7
	case types.MicroReversalDown:
		microSignal = -0.7
	}
	moodSignal := 0.0
	switch mood.Mood {
	case types.SignalBullish:
		moodSignal = mood.Strength * 0.5
	case types.SignalBearish:
		moodSignal = -mood.Strength * 0.5
	}

	composite := trendSignal + momentumSignal + rsiSignal + bbSignal + macdSignal + patternSignal + microSignal + moodSignal

	baseConfidence := adaptiveConfidence(composite, pat, volatility, closes, e.regime, mood, temporal, winRate)

	base := &types.Decision{
		Action:          types.ActionHold,
		CompositeSignal: composite,
		Indicators:      snap,
		Regime:          e.regime,
		Mood:            mood,
		Temporal:        temporal,
		Environment:     env,
		Agent:           agent.Name,
		AgentStats:      types.AgentStats{WinRate: agent.WinRate, Trades: agent.Trades},
		Weights:         effective,
	}

	if volatility < volatilityFloor {
		base.Reason = "Extremely low volatility - no edge"
		base.Confidence = 0
		base.Adjustments = []string{"No adjustments"}
		return base
	}

	action := types.ActionHold
	envMult := 0.95
	if env.Clarity > 0.6 {
		envMult = 1.1
	}
	threshold := 2.0 / envMult
	reason := fmt.Sprintf("Insufficient signal strength (%.2f) or confidence (%.0f%%) | Clarity: %.2f", composite, baseConfidence*100, env.Clarity)

	switch {
	case composite > threshold && baseConfidence > 0.55:
		action = types.ActionBuy
		if composite > 4/envMult {
			action = types.ActionStrongBuy
		}
		reason = fmt.Sprintf("Bullish composite signal (%.2f) | %s | %s | %s", composite, e.regime.Type, pat.Name, mood.Mood)
	case composite < -threshold && baseConfidence > 0.55:
		action = types.ActionSell
		if composite < -(4 / envMult) {
			action = types.ActionStrongSell
		}
		reason = fmt.Sprintf("Bearish composite signal (%.2f) | %s | %s | %s", composite, e.regime.Type, pat.Name, mood.Mood)
	case (composite > 1.5 || composite < -1.5) && baseConfidence > 0.7 && env.Clarity > 0.5:
		action = types.ActionSell
		direction := "bearish"
		if composite > 0 {
			action = types.ActionBuy
			direction = "bullish"
		}
		reason = fmt.Sprintf("Moderate %s signal with high confidence and clarity", direction)
	}

	confirmed := confirmDecision(action, pat, volatility, env, recentTrades, baseConfidence, temporal)

	if mood.Mood == types.SignalBullish && mood.Strength > 0.6 && (confirmed.Decision == types.ActionSell || confirmed.Decision == types.ActionStrongSell) {
		confirmed.Confidence *= 0.88
		confirmed.Adjustments = append(confirmed.Adjustments, "Mood conflict: bullish mood vs sell signal")
	} else if mood.Mood == types.SignalBearish && mood.Strength > 0.6 && (confirmed.Decision == types.ActionBuy || confirmed.Decision == types.ActionStrongBuy) {
		confirmed.Confidence *= 0.88
		confirmed.Adjustments = append(confirmed.Adjustments, "Mood conflict: bearish mood vs buy signal")
	}

	if lastTrade != nil && lastTrade.Lost() && confirmed.Decision == lastTrade.Decision {
		confirmed.Confidence *= 0.82
		confirmed.Adjustments = append(confirmed.Adjustments, "Penalized: repeating last losing direction")
	}

	e.memory = append(e.memory, memoryEntry{
		Time:            e.now(),
		Decision:        confirmed.Decision,
		Confidence:      confirmed.Confidence,
		CompositeSignal: composite,
		Mood:            mood.Mood,
		Regime:          e.regime.Type,
	})
	if len(e.memory) > decisionMemoryCap {
		e.memory = e.memory[len(e.memory)-decisionMemoryCap:]
	}

	if len(confirmed.Adjustments) > 1 {
		reason += " | Adjustments: "
		for i, a := range confirmed.Adjustments {
			if i > 0 {
				reason += ", "
			}
			reason += a
		}
	}

	base.Action = confirmed.Decision
	base.Reason = reason
	base.Confidence = confirmed.Confidence
	base.Adjustments = confirmed.Adjustments
	return base
}
