// Package tradelog persists everything the bot must remember across runs:
// the trade history (newest-first, unbounded), the last-trade snapshot, the
// user settings, and a daily decision journal.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"deriv-trading-bot/internal/types"
)

const (
	historyFile   = "trades.json"
	lastTradeFile = "last_trade.json"
	settingsFile  = "settings.json"
)

// Settings is the persisted user configuration slice that survives restarts.
type Settings struct {
	Symbol          string  `json:"symbol,omitempty"`
	Granularity     int     `json:"granularity,omitempty"`
	Stake           float64 `json:"stake,omitempty"`
	ProfitThreshold float64 `json:"profit_threshold,omitempty"`
	AutoIntervalSec int     `json:"auto_interval_sec,omitempty"`
}

// Store is the on-disk state directory with the history cached in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	dir     string
	history []types.TradeRecord
}

// Open loads (or creates) the state directory and reads the trade history.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "decisions"), 0o755); err != nil {
		return nil, fmt.Errorf("tradelog: create dir: %w", err)
	}
	s := &Store{dir: dir}
	b, err := os.ReadFile(filepath.Join(dir, historyFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fresh store
	case err != nil:
		return nil, fmt.Errorf("tradelog: read history: %w", err)
	default:
		if err := json.Unmarshal(b, &s.history); err != nil {
			return nil, fmt.Errorf("tradelog: parse history: %w", err)
		}
	}
	return s, nil
}

// History returns a copy of the trade history, newest first.
func (s *Store) History() []types.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.TradeRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Append prepends a record and persists history and last-trade snapshot.
func (s *Store) Append(rec types.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]types.TradeRecord{rec}, s.history...)
	if err := s.persistHistory(); err != nil {
		return err
	}
	return s.writeJSON(lastTradeFile, rec)
}

// UpdateContract mutates the record matching the contract id in place and
// persists. The updated record and whether it was found are returned.
func (s *Store) UpdateContract(contractID string, fn func(*types.TradeRecord)) (types.TradeRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].ContractID != contractID {
			continue
		}
		fn(&s.history[i])
		rec := s.history[i]
		if err := s.persistHistory(); err != nil {
			return rec, true, err
		}
		return rec, true, s.writeJSON(lastTradeFile, rec)
	}
	return types.TradeRecord{}, false, nil
}

// LastTrade returns the persisted last-trade snapshot, or nil when none
// exists yet.
func (s *Store) LastTrade() (*types.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(filepath.Join(s.dir, lastTradeFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tradelog: read last trade: %w", err)
	}
	var rec types.TradeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("tradelog: parse last trade: %w", err)
	}
	return &rec, nil
}

// Clear wipes the trade history but keeps settings.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	if err := s.persistHistory(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, lastTradeFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadSettings returns the persisted settings; a missing file yields the
// zero value so defaults apply.
func (s *Store) LoadSettings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cfg Settings
	b, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("tradelog: read settings: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("tradelog: parse settings: %w", err)
	}
	return cfg, nil
}

// SaveSettings persists the settings snapshot.
func (s *Store) SaveSettings(cfg Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(settingsFile, cfg)
}

// AppendDecision journals one decision into the daily JSONL file.
func (s *Store) AppendDecision(d *types.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := filepath.Join(s.dir, "decisions", now.Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("tradelog: open decision journal: %w", err)
	}
	defer f.Close()
	entry := struct {
		Time string `json:"time"`
		*types.Decision
	}{Time: now.Format(time.RFC3339), Decision: d}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips decision journal files older than retentionDays.
func (s *Store) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := filepath.Join(s.dir, "decisions")
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e := os.Stat(gz); e == nil {
			return os.Remove(p)
		}
		in, e := os.Open(p)
		if e != nil {
			return nil
		}
		defer in.Close()
		out, e := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e := io.Copy(gw, in); e != nil {
			gw.Close()
			out.Close()
			return nil
		}
		gw.Close()
		out.Close()
		return os.Remove(p)
	})
}

func (s *Store) persistHistory() error {
	return s.writeJSON(historyFile, s.history)
}

func (s *Store) writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(s.dir, name))
}
