package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: SIMULATION
symbol: R_100
granularity_sec: 60
stake: 10
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "1089", cfg.AppID)
	assert.Equal(t, "wss://ws.derivws.com/websockets/v3", cfg.Endpoint)
	assert.Equal(t, "state", cfg.StateDir)
	assert.Equal(t, 200, cfg.CandlesCount)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 10, cfg.AutoIntervalSec)
	assert.Equal(t, 25, cfg.KeepAliveSec)
	assert.Equal(t, 5, cfg.ReconnectSec)
	assert.Equal(t, 900, cfg.LockTimeoutSec)
	assert.False(t, cfg.TickSubscription, "tick stream is opt-in")
	assert.Equal(t, 14, cfg.Indicators.MAFast)
	assert.Equal(t, 50, cfg.Indicators.MASlow)
	assert.Equal(t, 20, cfg.Indicators.BBWindow)
}

func TestLoadConfigExplicitValuesWin(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
symbol: R_50
granularity_sec: 120
stake: 25
candles_count: 300
currency: EUR
lock_timeout_sec: 600
tick_subscription: true
indicators:
  ma_fast: 10
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "LIVE", cfg.Mode)
	assert.Equal(t, 300, cfg.CandlesCount)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 600, cfg.LockTimeoutSec)
	assert.True(t, cfg.TickSubscription)
	assert.Equal(t, 10, cfg.Indicators.MAFast)
	assert.Equal(t, 50, cfg.Indicators.MASlow, "unset nested fields still default")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad mode", "mode: YOLO\nsymbol: R_100\ngranularity_sec: 60\nstake: 10\n"},
		{"missing symbol", "mode: SIMULATION\ngranularity_sec: 60\nstake: 10\n"},
		{"zero stake", "mode: SIMULATION\nsymbol: R_100\ngranularity_sec: 60\n"},
		{"tiny candle window", "mode: SIMULATION\nsymbol: R_100\ngranularity_sec: 60\nstake: 10\ncandles_count: 10\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tc.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
