package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode     string `yaml:"mode"` // SIMULATION or LIVE
	AppID    string `yaml:"app_id"`
	Endpoint string `yaml:"endpoint"`
	StateDir string `yaml:"state_dir"`

	Symbol          string  `yaml:"symbol"`
	GranularitySec  int     `yaml:"granularity_sec"`
	CandlesCount    int     `yaml:"candles_count"`
	Stake           float64 `yaml:"stake"`
	Currency        string  `yaml:"currency"`
	ProfitThreshold float64 `yaml:"profit_threshold"`

	AutoIntervalSec  int  `yaml:"auto_interval_sec"`
	KeepAliveSec     int  `yaml:"keep_alive_sec"`
	ReconnectSec     int  `yaml:"reconnect_sec"`
	LockTimeoutSec   int  `yaml:"lock_timeout_sec"`
	TickSubscription bool `yaml:"tick_subscription"`

	Indicators struct {
		MAFast    int     `yaml:"ma_fast"`
		MASlow    int     `yaml:"ma_slow"`
		RSIPeriod int     `yaml:"rsi_period"`
		BBWindow  int     `yaml:"bb_window"`
		BBStdDev  float64 `yaml:"bb_stddev"`
		ATRPeriod int     `yaml:"atr_period"`
	} `yaml:"indicators"`

	Journal struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"journal"`
}

func (c *Config) Validate() error {
	if c.Mode != "SIMULATION" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'SIMULATION' or 'LIVE'", c.Mode)
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if c.GranularitySec <= 0 {
		return fmt.Errorf("granularity_sec must be positive, got %d", c.GranularitySec)
	}
	if c.Stake <= 0 {
		return fmt.Errorf("stake must be positive, got %.2f", c.Stake)
	}
	if c.ProfitThreshold < 0 {
		return fmt.Errorf("profit_threshold cannot be negative, got %.2f", c.ProfitThreshold)
	}
	if c.CandlesCount < 50 {
		return fmt.Errorf("candles_count must be at least 50, got %d", c.CandlesCount)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.AppID == "" {
		c.AppID = "1089"
	}
	if c.Endpoint == "" {
		c.Endpoint = "wss://ws.derivws.com/websockets/v3"
	}
	if c.StateDir == "" {
		c.StateDir = "state"
	}
	if c.CandlesCount == 0 {
		c.CandlesCount = 200
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.AutoIntervalSec == 0 {
		c.AutoIntervalSec = 10
	}
	if c.KeepAliveSec == 0 {
		c.KeepAliveSec = 25
	}
	if c.ReconnectSec == 0 {
		c.ReconnectSec = 5
	}
	if c.LockTimeoutSec == 0 {
		c.LockTimeoutSec = 900
	}
	if c.Indicators.MAFast == 0 {
		c.Indicators.MAFast = 14
	}
	if c.Indicators.MASlow == 0 {
		c.Indicators.MASlow = 50
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2
	}
	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = 14
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 14
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
