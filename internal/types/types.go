package types

import "time"

type Candle struct {
	Epoch                  int64
	Open, High, Low, Close float64
	Vol                    float64
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool { return c.Close > c.Open }

// Body is the absolute open-close distance.
func (c Candle) Body() float64 {
	b := c.Close - c.Open
	if b < 0 {
		return -b
	}
	return b
}

// Range is the high-low distance.
func (c Candle) Range() float64 { return c.High - c.Low }

func (c Candle) UpperWick() float64 {
	top := c.Open
	if c.Close > top {
		top = c.Close
	}
	return c.High - top
}

func (c Candle) LowerWick() float64 {
	bot := c.Open
	if c.Close < bot {
		bot = c.Close
	}
	return bot - c.Low
}

type Tick struct {
	Epoch int64
	Quote float64
}

// Actions emitted by the decision engine. STRONG variants keep the
// space-separated wording because they end up in reasons and trade records.
const (
	ActionHold       = "HOLD"
	ActionBuy        = "BUY"
	ActionSell       = "SELL"
	ActionStrongBuy  = "STRONG BUY"
	ActionStrongSell = "STRONG SELL"
)

// Pattern signal labels.
const (
	SignalBullish         = "BULLISH"
	SignalBearish         = "BEARISH"
	SignalStrongBullish   = "STRONG_BULLISH"
	SignalStrongBearish   = "STRONG_BEARISH"
	SignalNeutral         = "NEUTRAL"
	SignalReversalPending = "REVERSAL_PENDING"
)

type PatternResult struct {
	Name     string  `json:"pattern"`
	Strength float64 `json:"strength"`
	Signal   string  `json:"signal"`
}

// Regime types, first-match-wins classification.
const (
	RegimeInsufficientData = "INSUFFICIENT_DATA"
	RegimeStrongUptrend    = "STRONG_UPTREND"
	RegimeStrongDowntrend  = "STRONG_DOWNTREND"
	RegimeUptrend          = "UPTREND"
	RegimeDowntrend        = "DOWNTREND"
	RegimeHighVolatility   = "HIGH_VOLATILITY"
	RegimeConsolidation    = "CONSOLIDATION"
	RegimeNeutral          = "NEUTRAL"
	RegimeUnknown          = "UNKNOWN"
)

type Regime struct {
	Type       string  `json:"type"`
	Volatility float64 `json:"volatility"` // stddev / price ratio
	Trend      float64 `json:"trend"`      // (MA20-MA50)/MA50
	Confidence float64 `json:"confidence"`
	ATR        float64 `json:"atr"`
}

type Mood struct {
	Mood     string  `json:"mood"` // BULLISH / BEARISH / NEUTRAL
	Strength float64 `json:"strength"`
	Ratio    float64 `json:"ratio"`
}

type Temporal struct {
	Hour                  int     `json:"hour"`
	DayOfWeek             int     `json:"day_of_week"`
	LiquidityScore        float64 `json:"liquidity_score"`
	VolatilityExpectation float64 `json:"volatility_expectation"`
	ConfidenceModifier    float64 `json:"confidence_modifier"`
	Session               string  `json:"session"` // ASIAN / LONDON / US
}

// Micro-structure predictions from the tick buffer.
const (
	MicroUncertain     = "UNCERTAIN"
	MicroBullishCont   = "BULLISH_CONTINUATION"
	MicroBearishCont   = "BEARISH_CONTINUATION"
	MicroConsolidation = "CONSOLIDATION_LIKELY"
	MicroDojiForming   = "DOJI_FORMING"
	MicroReversalUp    = "REVERSAL_UP"
	MicroReversalDown  = "REVERSAL_DOWN"
)

type MicroStructure struct {
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Environment is the pre-decision layer analysis of trend clarity and noise.
type Environment struct {
	Trend    string  `json:"trend"` // UPTREND / DOWNTREND / SIDEWAYS / UNDEFINED
	Strength float64 `json:"strength"`
	Clarity  float64 `json:"clarity"`
	Noise    float64 `json:"noise"`
}

type BollingerBand struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorSnapshot is the per-cycle view of indicator values at the latest bar.
type IndicatorSnapshot struct {
	MA14       float64        `json:"ma14"`
	MA50       float64        `json:"ma50"`
	RSI        float64        `json:"rsi"`
	BB         BollingerBand  `json:"bb"`
	MACDHist   float64        `json:"macd_hist"`
	ATR        float64        `json:"atr"`
	Volatility float64        `json:"volatility"`
	Pattern    PatternResult  `json:"pattern"`
	Micro      MicroStructure `json:"micro"`
}

type AgentStats struct {
	WinRate float64 `json:"win_rate"`
	Trades  int     `json:"trades"`
}

type Decision struct {
	Action          string             `json:"action"`
	Reason          string             `json:"reason"`
	Confidence      float64            `json:"confidence"`
	CompositeSignal float64            `json:"composite_signal"`
	Indicators      IndicatorSnapshot  `json:"indicators"`
	Regime          Regime             `json:"regime"`
	Mood            Mood               `json:"mood"`
	Temporal        Temporal           `json:"temporal"`
	Environment     Environment        `json:"environment"`
	Agent           string             `json:"agent"`
	AgentStats      AgentStats         `json:"agent_stats"`
	Weights         map[string]float64 `json:"weights"`
	Adjustments     []string           `json:"adjustments"`
}

// IsBuy reports whether the action is BUY or STRONG BUY.
func (d *Decision) IsBuy() bool { return d.Action == ActionBuy || d.Action == ActionStrongBuy }

// IsSell reports whether the action is SELL or STRONG SELL.
func (d *Decision) IsSell() bool { return d.Action == ActionSell || d.Action == ActionStrongSell }

// Trade modes and results.
const (
	ModeSimulation = "SIMULATION"
	ModeLive       = "LIVE"

	ResultWin     = "WIN"
	ResultLoss    = "LOSS"
	ResultPending = "PENDING"
	ResultOpen    = "OPEN"
	ResultWon     = "WON"
	ResultLost    = "LOST"
	ResultSold    = "SOLD"
)

// TradeRecord is one row of the persisted trade history. Live records are
// created as PENDING and mutated in place as settlement updates arrive.
type TradeRecord struct {
	Time            string  `json:"time"`
	Timestamp       string  `json:"timestamp"`
	Mode            string  `json:"mode"`
	Symbol          string  `json:"symbol"`
	Amount          float64 `json:"amount"`
	Decision        string  `json:"decision"`
	Result          string  `json:"result"`
	Profit          float64 `json:"profit"`
	PreviousProfit  float64 `json:"previous_profit,omitempty"`
	Confidence      float64 `json:"confidence"`
	CompositeSignal float64 `json:"composite_signal"`
	Regime          string  `json:"regime"`
	Mood            string  `json:"mood"`
	DurationSec     int     `json:"duration_sec"`
	Agent           string  `json:"agent"`
	RiskScore       float64 `json:"risk_score,omitempty"`
	RiskCategory    string  `json:"risk_category,omitempty"`
	Quality         string  `json:"quality,omitempty"`
	WinProbability  float64 `json:"win_probability,omitempty"`
	Session         string  `json:"session,omitempty"`
	ContractID      string  `json:"contract_id,omitempty"`
}

// Won reports whether the record counts as a winning trade regardless of
// whether it was written by the simulator (WIN) or by live settlement (WON).
func (r TradeRecord) Won() bool { return r.Result == ResultWin || r.Result == ResultWon }

// Lost is the losing counterpart of Won.
func (r TradeRecord) Lost() bool { return r.Result == ResultLoss || r.Result == ResultLost }

type LockState struct {
	Locked           bool      `json:"locked"`
	ActiveContractID string    `json:"active_contract_id,omitempty"`
	PurchasePending  bool      `json:"purchase_pending"`
	LockedAt         time.Time `json:"locked_at,omitempty"`
}

type RiskAssessment struct {
	Score          float64  `json:"score"`
	Category       string   `json:"category"` // LOW … VERY HIGH
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation"`
}

type QualityScore struct {
	Score   int      `json:"score"` // 0-100
	Grade   string   `json:"grade"` // A+ … D
	Factors []string `json:"factors"`
}

type HistoricalContext struct {
	Score    float64  `json:"score"` // clamped to [0.5, 1.5]
	Insights []string `json:"insights"`
}

type DurationPlan struct {
	Minutes   int     `json:"minutes"`
	RiskScore float64 `json:"risk_score"`
	Rationale string  `json:"rationale"`
}
