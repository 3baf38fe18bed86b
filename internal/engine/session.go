package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"deriv-trading-bot/internal/interfaces"
	"deriv-trading-bot/internal/logger"
	"deriv-trading-bot/internal/tradelog"
	"deriv-trading-bot/internal/trace"
	"deriv-trading-bot/internal/types"
)

const (
	tickBufferSize     = 50
	minTradeConfidence = 0.55
)

// SessionConfig carries the trading loop parameters.
type SessionConfig struct {
	Mode            string // SIMULATION or LIVE
	Symbol          string
	GranularitySec  int
	CandlesCount    int
	Stake           float64
	Currency        string
	ProfitThreshold float64
	AutoInterval    time.Duration
	Reconnect       time.Duration
	LockTimeout     time.Duration
	SubscribeTicks  bool
}

// pendingTrade is the decision context held between the proposal request and
// the buy confirmation, so the eventual PENDING record carries the full
// decision snapshot.
type pendingTrade struct {
	decision *types.Decision
	plan     types.DurationPlan
	amount   float64
	risk     types.RiskAssessment
	quality  types.QualityScore
}

// Session owns the market state (candle window, tick buffer), the contract
// lock and the auto-trade cadence. All state is touched only from the Run
// goroutine; the auto flag is the one exception and is atomic.
type Session struct {
	cfg       SessionConfig
	transport interfaces.Transport
	decider   interfaces.Decider
	store     *tradelog.Store
	lock      *ContractLock
	rnd       *rand.Rand
	now       func() time.Time

	candles []types.Candle // oldest first
	ticks   []types.Tick   // oldest first, capped at tickBufferSize
	balance float64

	auto    atomic.Bool
	pending *pendingTrade
}

// NewSession wires the trading loop together. A nil now defaults to time.Now.
func NewSession(cfg SessionConfig, transport interfaces.Transport, decider interfaces.Decider, store *tradelog.Store, rnd *rand.Rand, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		cfg:       cfg,
		transport: transport,
		decider:   decider,
		store:     store,
		lock:      NewContractLock(cfg.LockTimeout, now),
		rnd:       rnd,
		now:       now,
	}
}

// StartAuto enables the periodic decision cycle.
func (s *Session) StartAuto() { s.auto.Store(true) }

// StopAuto pauses the periodic decision cycle. An open contract keeps
// settling; the lock is left untouched.
func (s *Session) StopAuto() { s.auto.Store(false) }

// AutoEnabled reports whether the periodic cycle is running.
func (s *Session) AutoEnabled() bool { return s.auto.Load() }

// LockState exposes the contract lock state for status reporting.
func (s *Session) LockState() types.LockState { return s.lock.State() }

// ForceUnlock manually releases the contract lock, e.g. after an operator
// confirms the position settled out of band.
func (s *Session) ForceUnlock(ctx context.Context) {
	s.pending = nil
	s.releaseLock(ctx, "forced")
}

// Balance returns the last account balance seen from the brokerage.
func (s *Session) Balance() float64 { return s.balance }

// Run connects and processes events until the context is cancelled. On
// disconnect the lock is released and a reconnect is attempted after the
// configured delay.
func (s *Session) Run(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.cfg.AutoInterval)
	defer ticker.Stop()

	var reconnectC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.logPerformance(ctx)
			if s.cfg.SubscribeTicks {
				_ = s.transport.ForgetTicks()
			}
			_ = s.transport.Close()
			return ctx.Err()

		case <-ticker.C:
			if s.auto.Load() {
				s.runCycle(ctx)
			}

		case <-reconnectC:
			reconnectC = nil
			if err := s.connect(ctx); err != nil {
				logger.ErrorWithErr(ctx, "Reconnect failed, retrying", err,
					"delay", s.cfg.Reconnect.String())
				reconnectC = time.After(s.cfg.Reconnect)
			}

		case ev := <-s.transport.Events():
			if d, ok := ev.(interfaces.DisconnectEvent); ok {
				logger.ErrorWithErr(ctx, "Connection lost, scheduling reconnect", d.Err,
					"delay", s.cfg.Reconnect.String())
				s.releaseLock(ctx, "disconnect")
				reconnectC = time.After(s.cfg.Reconnect)
				continue
			}
			s.handleEvent(ctx, ev)
		}
	}
}

// connect dials and bootstraps market data. The tick stream feeds only the
// micro-structure analysis, so it is optional; without it candles refresh on
// history reloads alone.
func (s *Session) connect(ctx context.Context) error {
	if err := s.transport.Connect(ctx); err != nil {
		return err
	}
	if err := s.transport.RequestCandles(s.cfg.Symbol, s.cfg.GranularitySec, s.cfg.CandlesCount); err != nil {
		return err
	}
	if !s.cfg.SubscribeTicks {
		return nil
	}
	return s.transport.SubscribeTicks(s.cfg.Symbol)
}

// runCycle is one pass of the auto trader: decide, then either simulate or
// request a live contract. The contract lock short-circuits the whole cycle
// while a position is open or a purchase is in flight.
func (s *Session) runCycle(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "session.runCycle")
	defer span.End()

	if s.lock.IsLocked() {
		logger.Debug(ctx, "Cycle skipped, contract lock active",
			"contract_id", s.lock.ActiveContractID())
		return
	}
	if len(s.candles) < decisionMinCandles {
		logger.Debug(ctx, "Cycle skipped, not enough candles", "have", len(s.candles))
		return
	}

	history := s.store.History()
	lastTrade, err := s.store.LastTrade()
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load last trade", err)
	}

	d := s.decider.Decide(s.candles, s.ticks, history, lastTrade)
	if d == nil {
		return
	}
	if err := s.store.AppendDecision(d); err != nil {
		logger.ErrorWithErr(ctx, "Failed to journal decision", err)
	}

	logger.Decision(ctx, s.cfg.Symbol, d.Action, d.Confidence, d.Reason,
		"composite", d.CompositeSignal,
		"regime", d.Regime.Type,
		"agent", d.Agent,
	)

	if d.Action == types.ActionHold || d.Confidence <= minTradeConfidence {
		return
	}

	plan := OptimizeDuration(d.Confidence, d.Regime, d.Indicators.Volatility,
		d.Indicators.Pattern, s.cfg.GranularitySec)

	if s.cfg.Mode == types.ModeSimulation {
		s.simulate(ctx, d, plan, history)
		return
	}
	s.requestTrade(ctx, d, plan)
}

func (s *Session) simulate(ctx context.Context, d *types.Decision, plan types.DurationPlan, history []types.TradeRecord) {
	price := 0.0
	if len(s.candles) > 0 {
		price = s.candles[len(s.candles)-1].Close
	}

	res := SimulateTrade(SimParams{
		Symbol:   s.cfg.Symbol,
		Amount:   s.cfg.Stake,
		Decision: d,
		Duration: plan,
		Price:    price,
	}, history, d.AgentStats.WinRate, s.rnd, s.now())

	if err := s.store.Append(res.Record); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist simulated trade", err)
		return
	}
	s.balance += res.Record.Profit

	logger.Trade(ctx, s.cfg.Symbol, res.Record.Decision, 1, price, "",
		"mode", types.ModeSimulation,
		"result", res.Record.Result,
		"profit", res.Record.Profit,
		"win_probability", res.WinProb,
		"risk", res.Risk.Category,
		"quality", res.Quality.Grade,
	)
}

// requestTrade kicks off the live purchase flow: assess risk, log it, then
// request a quote. The actual buy happens when the proposal arrives; the lock
// is only taken once the buy is sent.
func (s *Session) requestTrade(ctx context.Context, d *types.Decision, plan types.DurationPlan) {
	contractType := "PUT"
	if d.IsBuy() {
		contractType = "CALL"
	}

	recent := s.store.History()
	if len(recent) > 20 {
		recent = recent[:20]
	}
	price := 0.0
	if len(s.candles) > 0 {
		price = s.candles[len(s.candles)-1].Close
	}
	tradeCtx := AnalyzeHistoricalContext(recent, d.Action, d.Regime.Type, s.now())
	risk := AssessTradeRisk(d.Action, d.Confidence, d.Indicators, price, d.Regime, d.Mood, d.Temporal, tradeCtx)
	quality := DecisionQuality(d)

	logger.Risk(ctx, s.cfg.Symbol, "pre_trade_assessment",
		"score", risk.Score,
		"category", risk.Category,
		"quality", quality.Grade,
		"context_score", tradeCtx.Score,
		"recommendation", risk.Recommendation,
	)

	s.pending = &pendingTrade{decision: d, plan: plan, amount: s.cfg.Stake, risk: risk, quality: quality}

	err := s.transport.RequestProposal(interfaces.ProposalRequest{
		Amount:          s.cfg.Stake,
		ContractType:    contractType,
		Currency:        s.cfg.Currency,
		DurationMinutes: plan.Minutes,
		Symbol:          s.cfg.Symbol,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Proposal request failed", err)
		s.pending = nil
		return
	}

	logger.Info(ctx, "Proposal requested",
		"contract_type", contractType,
		"amount", s.cfg.Stake,
		"duration_min", plan.Minutes,
		"rationale", plan.Rationale,
	)
}

func (s *Session) handleEvent(ctx context.Context, ev interfaces.Event) {
	switch e := ev.(type) {
	case interfaces.AuthorizedEvent:
		s.balance = e.Balance
		logger.Info(ctx, "Session authorized", "loginid", e.LoginID, "balance", e.Balance)

	case interfaces.CandlesEvent:
		s.candles = e.Candles
		s.trimCandles()
		logger.Info(ctx, "Candle history loaded", "count", len(s.candles))

	case interfaces.TickEvent:
		s.applyTick(e.Tick)

	case interfaces.ProposalEvent:
		s.onProposal(ctx, e)

	case interfaces.BuyConfirmationEvent:
		s.onBuyConfirmation(ctx, e)

	case interfaces.ContractUpdateEvent:
		s.onContractUpdate(ctx, e)

	case interfaces.SoldEvent:
		logger.Info(ctx, "Contract sold", "transaction_id", e.TransactionID, "sold_for", e.SoldFor)

	case interfaces.APIErrorEvent:
		logger.Error(ctx, "Brokerage error, releasing lock", "code", e.Code, "message", e.Message)
		s.pending = nil
		s.releaseLock(ctx, "api error")
	}
}

// applyTick appends the tick to the buffer and folds it into the candle
// window, opening a synthetic candle when the tick crosses a granularity
// boundary.
func (s *Session) applyTick(t types.Tick) {
	s.ticks = append(s.ticks, t)
	if len(s.ticks) > tickBufferSize {
		s.ticks = s.ticks[len(s.ticks)-tickBufferSize:]
	}

	if len(s.candles) == 0 {
		return
	}
	last := &s.candles[len(s.candles)-1]
	g := int64(s.cfg.GranularitySec)

	if t.Epoch >= last.Epoch+g {
		aligned := t.Epoch - (t.Epoch % g)
		s.candles = append(s.candles, types.Candle{
			Epoch: aligned,
			Open:  t.Quote, High: t.Quote, Low: t.Quote, Close: t.Quote,
		})
		s.trimCandles()
		return
	}

	last.Close = t.Quote
	if t.Quote > last.High {
		last.High = t.Quote
	}
	if t.Quote < last.Low {
		last.Low = t.Quote
	}
}

func (s *Session) trimCandles() {
	if s.cfg.CandlesCount > 0 && len(s.candles) > s.cfg.CandlesCount {
		s.candles = s.candles[len(s.candles)-s.cfg.CandlesCount:]
	}
}

// onProposal buys the first quote that arrives while no contract is open.
// Marking the purchase pending before sending the buy makes IsLocked true
// immediately, so streamed re-quotes and overlapping cycles cannot double-buy.
func (s *Session) onProposal(ctx context.Context, e interfaces.ProposalEvent) {
	if s.pending == nil || s.lock.IsLocked() {
		return
	}

	s.lock.MarkPurchasePending()
	if err := s.transport.Buy(e.ID, e.AskPrice); err != nil {
		logger.ErrorWithErr(ctx, "Buy request failed", err)
		s.lock.ClearPurchasePending()
		s.pending = nil
		return
	}

	logger.Info(ctx, "Buy sent", "proposal_id", e.ID, "ask_price", e.AskPrice, "payout", e.Payout)
}

// onBuyConfirmation locks the contract and writes the PENDING record.
func (s *Session) onBuyConfirmation(ctx context.Context, e interfaces.BuyConfirmationEvent) {
	s.lock.Lock(e.ContractID)
	s.lock.ClearPurchasePending()

	p := s.pending
	s.pending = nil
	if p == nil {
		logger.Warn(ctx, "Buy confirmation without pending decision", "contract_id", e.ContractID)
		return
	}

	now := s.now()
	rec := types.TradeRecord{
		Time:            now.Format("15:04:05"),
		Timestamp:       now.Format(time.RFC3339),
		Mode:            types.ModeLive,
		Symbol:          s.cfg.Symbol,
		Amount:          p.amount,
		Decision:        p.decision.Action,
		Result:          types.ResultPending,
		Confidence:      p.decision.Confidence,
		CompositeSignal: p.decision.CompositeSignal,
		Regime:          p.decision.Regime.Type,
		Mood:            p.decision.Mood.Mood,
		DurationSec:     p.plan.Minutes * 60,
		Agent:           p.decision.Agent,
		RiskScore:       p.risk.Score,
		RiskCategory:    p.risk.Category,
		Quality:         p.quality.Grade,
		Session:         p.decision.Temporal.Session,
		ContractID:      e.ContractID,
	}
	if err := s.store.Append(rec); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist pending trade", err)
	}

	logger.Trade(ctx, e.Symbol, p.decision.Action, 1, e.BuyPrice, e.ContractID,
		"mode", types.ModeLive,
		"contract_type", e.ContractType,
	)
}

// onContractUpdate applies settlement stream updates: take profit early when
// the threshold is hit, track incremental profit into the balance and release
// the lock on a final status.
func (s *Session) onContractUpdate(ctx context.Context, e interfaces.ContractUpdateEvent) {
	if e.Status == "open" && s.cfg.ProfitThreshold > 0 && e.Profit >= s.cfg.ProfitThreshold {
		logger.Info(ctx, "Profit threshold reached, selling",
			"contract_id", e.ContractID, "profit", e.Profit, "bid_price", e.BidPrice)
		if err := s.transport.Sell(e.ContractID, e.BidPrice); err != nil {
			logger.ErrorWithErr(ctx, "Sell request failed", err)
		}
		return
	}

	final := e.Status == "won" || e.Status == "lost" || e.Status == "sold"
	if !final {
		return
	}

	rec, found, err := s.store.UpdateContract(e.ContractID, func(r *types.TradeRecord) {
		r.PreviousProfit = r.Profit
		r.Profit = e.Profit
		r.Result = strings.ToUpper(e.Status)
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to settle trade record", err)
	}
	if found {
		s.balance += rec.Profit - rec.PreviousProfit
		logger.Info(ctx, "Contract settled",
			"contract_id", e.ContractID,
			"status", strings.ToUpper(e.Status),
			"profit", e.Profit,
			"balance", s.balance,
		)
	}

	// Confirmations arrive before their settlements, so a final update that
	// does not match the locked contract is a stale stream for an earlier
	// position. Releasing on it would let a second purchase out while the
	// first is still unresolved.
	if s.lock.ActiveContractID() == e.ContractID {
		s.releaseLock(ctx, "settlement")
	} else if !found {
		logger.Warn(ctx, "Settlement for unknown contract ignored",
			"contract_id", e.ContractID, "status", e.Status)
	}
}

// logPerformance emits the end-of-session breakdown of the trade history.
func (s *Session) logPerformance(ctx context.Context) {
	a := PerformanceAnalytics(s.store.History())
	if a == nil {
		return
	}
	logger.Info(ctx, "Session performance",
		"trades", a.TotalTrades,
		"wins", a.Wins,
		"losses", a.Losses,
		"win_rate", a.WinRate,
		"total_profit", a.TotalProfit,
		"recent_win_rate", a.Recent.WinRate,
		"recent_avg_confidence", a.Recent.AvgConfidence,
	)
	for agent, b := range a.ByAgent {
		logger.Debug(ctx, "Agent performance",
			"agent", agent,
			"trades", b.Trades,
			"win_rate", b.WinRate,
			"profit", b.Profit,
		)
	}
}

func (s *Session) releaseLock(ctx context.Context, cause string) {
	s.lock.ClearPurchasePending()
	if s.lock.Unlock() {
		logger.Info(ctx, "Contract lock released", "cause", cause)
	}
}
