package tradelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv-trading-bot/internal/types"
)

func rec(id, decision, result string) types.TradeRecord {
	return types.TradeRecord{
		Timestamp:  time.Now().Format(time.RFC3339),
		Mode:       types.ModeLive,
		Symbol:     "R_100",
		Amount:     10,
		Decision:   decision,
		Result:     result,
		ContractID: id,
	}
}

func TestAppendPrependsAndPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append(rec("1", types.ActionBuy, types.ResultPending)))
	require.NoError(t, s.Append(rec("2", types.ActionSell, types.ResultPending)))

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "2", hist[0].ContractID, "history must be newest first")

	// a fresh open reads the same state back
	s2, err := Open(dir)
	require.NoError(t, err)
	hist2 := s2.History()
	require.Len(t, hist2, 2)
	assert.Equal(t, "2", hist2[0].ContractID)

	last, err := s2.LastTrade()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "2", last.ContractID)
}

func TestLastTradeMissingFile(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	last, err := s.LastTrade()
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestUpdateContractSettles(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(rec("777", types.ActionBuy, types.ResultPending)))

	updated, found, err := s.UpdateContract("777", func(r *types.TradeRecord) {
		r.Result = types.ResultWon
		r.Profit = 8.5
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.ResultWon, updated.Result)
	assert.Equal(t, 8.5, updated.Profit)

	hist := s.History()
	require.Len(t, hist, 1)
	assert.Equal(t, types.ResultWon, hist[0].Result)

	// settlement refreshes the last-trade snapshot too
	last, err := s.LastTrade()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, types.ResultWon, last.Result)
}

func TestUpdateContractUnknownID(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(rec("1", types.ActionBuy, types.ResultPending)))

	_, found, err := s.UpdateContract("does-not-exist", func(r *types.TradeRecord) {
		r.Result = types.ResultWon
	})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, types.ResultPending, s.History()[0].Result)
}

func TestClearKeepsSettings(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(rec("1", types.ActionBuy, types.ResultWin)))
	require.NoError(t, s.SaveSettings(Settings{Symbol: "R_50", Stake: 25}))

	require.NoError(t, s.Clear())
	assert.Empty(t, s.History())

	last, err := s.LastTrade()
	require.NoError(t, err)
	assert.Nil(t, last)

	cfg, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "R_50", cfg.Symbol)
	assert.Equal(t, 25.0, cfg.Stake)
}

func TestSettingsMissingFileYieldsZero(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	cfg, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, cfg)
}

func TestAppendDecisionWritesDailyJournal(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	d := &types.Decision{Action: types.ActionBuy, Confidence: 0.8, Reason: "test"}
	require.NoError(t, s.AppendDecision(d))
	require.NoError(t, s.AppendDecision(d))

	p := filepath.Join(dir, "decisions", time.Now().UTC().Format("2006-01-02")+".jsonl")
	b, err := os.ReadFile(p)
	require.NoError(t, err)

	lines := 0
	for _, c := range b {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
}

func TestCompressOlderGzipsStaleJournals(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	old := filepath.Join(dir, "decisions", "2026-01-01.jsonl")
	require.NoError(t, os.WriteFile(old, []byte("{\"action\":\"HOLD\"}\n"), 0o644))
	stale := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, stale, stale))

	fresh := filepath.Join(dir, "decisions", "fresh.jsonl")
	require.NoError(t, os.WriteFile(fresh, []byte("{}\n"), 0o644))

	require.NoError(t, s.CompressOlder(14))

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "stale journal must be removed")
	_, err = os.Stat(old + ".gz")
	assert.NoError(t, err, "stale journal must be gzipped")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh journal must be left alone")
}
