package engine

import (
	"fmt"
	"strings"
	"time"

	"deriv-trading-bot/internal/types"
)

// AnalyzeHistoricalContext looks for recurring conditions in the most recent
// trades (history is newest-first): direction fatigue, hour-of-day and regime
// performance, confidence calibration and hot/cold streaks. The score scales
// win probability and risk and is clamped to [0.5, 1.5].
func AnalyzeHistoricalContext(recent []types.TradeRecord, decision string, regimeType string, now time.Time) types.HistoricalContext {
	if len(recent) < 3 {
		return types.HistoricalContext{Score: 1.0, Insights: []string{}}
	}

	score := 1.0
	insights := []string{}

	last10 := recent
	if len(last10) > 10 {
		last10 = last10[:10]
	}

	isBuy := strings.Contains(decision, "BUY")
	isSell := strings.Contains(decision, "SELL")
	sameDir := []types.TradeRecord{}
	for _, t := range last10 {
		if (isBuy && strings.Contains(t.Decision, "BUY")) || (isSell && strings.Contains(t.Decision, "SELL")) {
			sameDir = append(sameDir, t)
		}
	}
	if len(sameDir) >= 5 {
		wins := 0
		for _, t := range sameDir {
			if t.Won() {
				wins++
			}
		}
		wr := float64(wins) / float64(len(sameDir))
		if wr < 0.4 {
			score *= 0.75
			dir := "SELL"
			if isBuy {
				dir = "BUY"
			}
			insights = append(insights, fmt.Sprintf("Direction fatigue: %d recent %s trades with %.0f%% WR", len(sameDir), dir, wr*100))
		}
	}

	hour := now.UTC().Hour()
	sameHour := []types.TradeRecord{}
	for _, t := range last10 {
		ts, err := time.Parse(time.RFC3339, t.Timestamp)
		if err != nil {
			continue
		}
		diff := ts.UTC().Hour() - hour
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			sameHour = append(sameHour, t)
		}
	}
	if len(sameHour) >= 3 {
		wins := 0
		for _, t := range sameHour {
			if t.Won() {
				wins++
			}
		}
		wr := float64(wins) / float64(len(sameHour))
		if wr > 0.7 {
			score *= 1.1
			insights = append(insights, fmt.Sprintf("Strong hour performance: %.0f%% WR at this time", wr*100))
		} else if wr < 0.3 {
			score *= 0.85
			insights = append(insights, fmt.Sprintf("Weak hour performance: %.0f%% WR at this time", wr*100))
		}
	}

	sameRegime := []types.TradeRecord{}
	for _, t := range last10 {
		if t.Regime == regimeType {
			sameRegime = append(sameRegime, t)
		}
	}
	if len(sameRegime) >= 4 {
		wins := 0
		for _, t := range sameRegime {
			if t.Won() {
				wins++
			}
		}
		wr := float64(wins) / float64(len(sameRegime))
		if wr > 0.65 {
			score *= 1.08
			insights = append(insights, fmt.Sprintf("Strong regime performance: %.0f%% WR in %s", wr*100, regimeType))
		} else if wr < 0.35 {
			score *= 0.8
			insights = append(insights, fmt.Sprintf("Weak regime performance: %.0f%% WR in %s", wr*100, regimeType))
		}
	}

	highConf := []types.TradeRecord{}
	for _, t := range last10 {
		if t.Confidence > 0.75 {
			highConf = append(highConf, t)
		}
	}
	if len(highConf) >= 3 {
		wins := 0
		for _, t := range highConf {
			if t.Won() {
				wins++
			}
		}
		wr := float64(wins) / float64(len(highConf))
		if wr < 0.5 {
			score *= 0.85
			insights = append(insights, fmt.Sprintf("High confidence underperforming: %.0f%% WR on confident trades", wr*100))
		}
	}

	last5 := recent
	if len(last5) > 5 {
		last5 = last5[:5]
	}
	recentWins := 0
	for _, t := range last5 {
		if t.Won() {
			recentWins++
		}
	}
	if recentWins >= 4 {
		score *= 1.05
		insights = append(insights, fmt.Sprintf("Hot streak: %d/5 recent wins", recentWins))
	} else if recentWins <= 1 {
		score *= 0.9
		insights = append(insights, fmt.Sprintf("Cold streak: %d/5 recent wins", recentWins))
	}

	if score < 0.5 {
		score = 0.5
	}
	if score > 1.5 {
		score = 1.5
	}
	if len(insights) == 0 {
		insights = []string{"No significant historical patterns"}
	}
	return types.HistoricalContext{Score: score, Insights: insights}
}
