package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deriv-trading-bot/internal/engine"
	"deriv-trading-bot/internal/logger"
	"deriv-trading-bot/internal/trace"
	"deriv-trading-bot/internal/tradelog"
)

func main() {
	if err := initializeSystem(); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	st, err := tradelog.Open(cfg.StateDir)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open trade store", err)
		os.Exit(1)
	}
	compressOldJournals(ctx, st, cfg)
	applySavedSettings(ctx, st, cfg)

	if err := st.SaveSettings(tradelog.Settings{
		Symbol:          cfg.Symbol,
		Granularity:     cfg.GranularitySec,
		Stake:           cfg.Stake,
		ProfitThreshold: cfg.ProfitThreshold,
		AutoIntervalSec: cfg.AutoIntervalSec,
	}); err != nil {
		logger.Warn(ctx, "Failed to persist settings", "error", err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	transport := initializeTransport(ctx, cfg)
	decider := initializeDecider(cfg, rnd)

	sess := engine.NewSession(sessionConfig(cfg), transport, decider, st, rnd, nil)
	sess.StartAuto()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	logger.Info(ctx, "Bot started.",
		"mode", cfg.Mode,
		"symbol", cfg.Symbol,
		"granularity_sec", cfg.GranularitySec,
		"stake", cfg.Stake,
	)

	err = sess.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr(ctx, "Session terminated", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = trace.Shutdown(shutdownCtx)
	_ = logger.Shutdown(shutdownCtx)
}
