package engine

import (
	"deriv-trading-bot/internal/types"
)

// Bucket aggregates trades along one dimension.
type Bucket struct {
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	Profit  float64 `json:"profit"`
	WinRate float64 `json:"win_rate"`
}

// RecentTrend summarizes the most recent trades.
type RecentTrend struct {
	Trades        int     `json:"trades"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"win_rate"`
	Profit        float64 `json:"profit"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Analytics is the full performance breakdown over the trade history.
type Analytics struct {
	TotalTrades int               `json:"total_trades"`
	Wins        int               `json:"wins"`
	Losses      int               `json:"losses"`
	WinRate     float64           `json:"win_rate"`
	TotalProfit float64           `json:"total_profit"`
	AvgProfit   float64           `json:"avg_profit"`
	ByRegime    map[string]Bucket `json:"by_regime"`
	ByAgent     map[string]Bucket `json:"by_agent"`
	ByMood      map[string]Bucket `json:"by_mood"`
	BySession   map[string]Bucket `json:"by_session"`
	ByRisk      map[string]Bucket `json:"by_risk"`
	Recent      RecentTrend       `json:"recent"`
}

// PerformanceAnalytics slices the history (newest-first) by regime, agent,
// mood, session and risk category. Returns nil with no history.
func PerformanceAnalytics(history []types.TradeRecord) *Analytics {
	if len(history) == 0 {
		return nil
	}

	a := &Analytics{
		TotalTrades: len(history),
		ByRegime:    map[string]Bucket{},
		ByAgent:     map[string]Bucket{},
		ByMood:      map[string]Bucket{},
		BySession:   map[string]Bucket{},
		ByRisk:      map[string]Bucket{},
	}

	for _, t := range history {
		if t.Won() {
			a.Wins++
		}
		if t.Lost() {
			a.Losses++
		}
		a.TotalProfit += t.Profit

		addBucket(a.ByRegime, t.Regime, t)
		addBucket(a.ByAgent, t.Agent, t)
		addBucket(a.ByMood, t.Mood, t)
		addBucket(a.BySession, t.Session, t)
		addBucket(a.ByRisk, t.RiskCategory, t)
	}

	a.WinRate = float64(a.Wins) / float64(a.TotalTrades)
	a.AvgProfit = a.TotalProfit / float64(a.TotalTrades)

	finalize(a.ByRegime)
	finalize(a.ByAgent)
	finalize(a.ByMood)
	finalize(a.BySession)
	finalize(a.ByRisk)

	recent := history
	if len(recent) > 20 {
		recent = recent[:20]
	}
	for _, t := range recent {
		if t.Won() {
			a.Recent.Wins++
		}
		a.Recent.Profit += t.Profit
		a.Recent.AvgConfidence += t.Confidence
	}
	a.Recent.Trades = len(recent)
	a.Recent.WinRate = float64(a.Recent.Wins) / float64(len(recent))
	a.Recent.AvgConfidence /= float64(len(recent))

	return a
}

func addBucket(m map[string]Bucket, key string, t types.TradeRecord) {
	if key == "" {
		return
	}
	b := m[key]
	b.Trades++
	if t.Won() {
		b.Wins++
	}
	b.Profit += t.Profit
	m[key] = b
}

func finalize(m map[string]Bucket) {
	for k, b := range m {
		b.WinRate = float64(b.Wins) / float64(b.Trades)
		m[k] = b
	}
}
