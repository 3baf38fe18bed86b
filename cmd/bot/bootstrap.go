package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"deriv-trading-bot/internal/broker/deriv"
	"deriv-trading-bot/internal/engine"
	"deriv-trading-bot/internal/engine/engineobs"
	"deriv-trading-bot/internal/interfaces"
	"deriv-trading-bot/internal/logger"
	"deriv-trading-bot/internal/store"
	"deriv-trading-bot/internal/trace"
	"deriv-trading-bot/internal/tradelog"
	"deriv-trading-bot/internal/types"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and validates the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		logger.ErrorWithErr(ctx, "Invalid config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldJournals gzips decision journal files older than the retention
// window. An env override takes precedence over the config value.
func compressOldJournals(ctx context.Context, st *tradelog.Store, cfg *store.Config) {
	days := cfg.Journal.RetentionDays
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		fmt.Sscanf(v, "%d", &days)
	}
	if days <= 0 {
		return
	}
	if err := st.CompressOlder(days); err != nil {
		logger.Warn(ctx, "Failed to compress old journals", "error", err)
	}
}

// applySavedSettings overlays runtime settings persisted by a previous run on
// top of the file config
func applySavedSettings(ctx context.Context, st *tradelog.Store, cfg *store.Config) {
	saved, err := st.LoadSettings()
	if err != nil {
		logger.Warn(ctx, "Failed to load saved settings", "error", err)
		return
	}
	if saved == (tradelog.Settings{}) {
		return
	}
	if saved.Symbol != "" {
		cfg.Symbol = saved.Symbol
	}
	if saved.Granularity > 0 {
		cfg.GranularitySec = saved.Granularity
	}
	if saved.Stake > 0 {
		cfg.Stake = saved.Stake
	}
	if saved.ProfitThreshold > 0 {
		cfg.ProfitThreshold = saved.ProfitThreshold
	}
	if saved.AutoIntervalSec > 0 {
		cfg.AutoIntervalSec = saved.AutoIntervalSec
	}
	logger.Info(ctx, "Applied saved settings",
		"symbol", cfg.Symbol,
		"granularity_sec", cfg.GranularitySec,
		"stake", cfg.Stake,
	)
}

// initializeTransport builds the brokerage websocket client
func initializeTransport(ctx context.Context, cfg *store.Config) interfaces.Transport {
	token := os.Getenv("DERIV_TOKEN")
	if cfg.Mode == types.ModeLive && token == "" {
		logger.Warn(ctx, "LIVE mode without DERIV_TOKEN - purchases will be rejected")
	}
	if cfg.Mode == types.ModeSimulation {
		logger.Info(ctx, "Running in SIMULATION mode - trades are settled locally")
	}

	return deriv.New(deriv.Config{
		Endpoint:  cfg.Endpoint,
		AppID:     cfg.AppID,
		Token:     token,
		KeepAlive: time.Duration(cfg.KeepAliveSec) * time.Second,
	})
}

// initializeDecider builds the decision engine with observability middleware
func initializeDecider(cfg *store.Config, rnd *rand.Rand) interfaces.Decider {
	eng := engine.New(engine.IndicatorParams{
		MAFast:    cfg.Indicators.MAFast,
		MASlow:    cfg.Indicators.MASlow,
		RSIPeriod: cfg.Indicators.RSIPeriod,
		BBWindow:  cfg.Indicators.BBWindow,
		BBStdDev:  cfg.Indicators.BBStdDev,
		ATRPeriod: cfg.Indicators.ATRPeriod,
	}, rnd, nil)
	return engineobs.Wrap(eng)
}

// sessionConfig maps the file config onto the trading loop parameters
func sessionConfig(cfg *store.Config) engine.SessionConfig {
	return engine.SessionConfig{
		Mode:            cfg.Mode,
		Symbol:          cfg.Symbol,
		GranularitySec:  cfg.GranularitySec,
		CandlesCount:    cfg.CandlesCount,
		Stake:           cfg.Stake,
		Currency:        cfg.Currency,
		ProfitThreshold: cfg.ProfitThreshold,
		AutoInterval:    time.Duration(cfg.AutoIntervalSec) * time.Second,
		Reconnect:       time.Duration(cfg.ReconnectSec) * time.Second,
		LockTimeout:     time.Duration(cfg.LockTimeoutSec) * time.Second,
		SubscribeTicks:  cfg.TickSubscription,
	}
}
