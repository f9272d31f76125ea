package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CryptoBreakoutBot/internal/operations/backtest"
)

// Load reads the environment (plus an optional .env file) and returns
// the assembled configuration with default run parameters. A missing
// .env file is fine; set variables win either way.
func Load() (*Config, error) {
	// ignore absence, the environment may be set directly
	_ = godotenv.Load()

	return &Config{
		Exchange: ExchangeConfig{
			Source:    envOr("EXCHANGE_SOURCE", "binance"),
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     EnvtoInt(os.Getenv("DB_PORT")),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Run: backtest.DefaultConfig(),
	}, nil
}

// runParamsFile mirrors backtest.Config for YAML overrides. Only set
// fields override the defaults.
type runParamsFile struct {
	LongEnabled  *bool `yaml:"long_enabled"`
	ShortEnabled *bool `yaml:"short_enabled"`

	PendingTTL     *int     `yaml:"pending_ttl"`
	LimitOffsetPct *float64 `yaml:"limit_offset_pct"`

	Strategy struct {
		Lookback     *int     `yaml:"lookback"`
		SlopePct     *float64 `yaml:"slope_pct"`
		MinWidthPct  *float64 `yaml:"min_width_pct"`
		ChannelPos   *float64 `yaml:"channel_pos"`
		MinSignalGap *int     `yaml:"min_signal_gap"`
		LatchBars    *int     `yaml:"latch_bars"`
	} `yaml:"strategy"`

	Indicators struct {
		MACDFast   *int     `yaml:"macd_fast"`
		MACDSlow   *int     `yaml:"macd_slow"`
		MACDSignal *int     `yaml:"macd_signal"`
		BBPeriod   *int     `yaml:"bb_period"`
		BBStdMult  *float64 `yaml:"bb_std_mult"`
		ATRPeriod  *int     `yaml:"atr_period"`
	} `yaml:"indicators"`

	Risk struct {
		TotalDeposit *float64 `yaml:"total_deposit"`
		TradeStake   *float64 `yaml:"trade_stake"`
		Long         sideFile `yaml:"long"`
		Short        sideFile `yaml:"short"`
	} `yaml:"risk"`
}

type sideFile struct {
	TPATRMult     *float64 `yaml:"tp_atr_mult"`
	SLATRMult     *float64 `yaml:"sl_atr_mult"`
	MaxSARATRMult *float64 `yaml:"max_sar_atr_mult"`
}

// ApplyParamsFile overlays a YAML parameter file onto the run config.
func (c *Config) ApplyParamsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read params %s: %w", path, err)
	}

	var f runParamsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("config: parse params %s: %w", path, err)
	}

	r := &c.Run
	setBool(&r.LongEnabled, f.LongEnabled)
	setBool(&r.ShortEnabled, f.ShortEnabled)
	setInt(&r.PendingTTL, f.PendingTTL)
	setFloat(&r.LimitOffsetPct, f.LimitOffsetPct)

	setInt(&r.Strategy.Lookback, f.Strategy.Lookback)
	setFloat(&r.Strategy.SlopePct, f.Strategy.SlopePct)
	setFloat(&r.Strategy.MinWidthPct, f.Strategy.MinWidthPct)
	setFloat(&r.Strategy.ChannelPos, f.Strategy.ChannelPos)
	setInt(&r.Strategy.MinSignalGap, f.Strategy.MinSignalGap)
	setInt(&r.Strategy.LatchBars, f.Strategy.LatchBars)

	setInt(&r.Indicators.MACDFast, f.Indicators.MACDFast)
	setInt(&r.Indicators.MACDSlow, f.Indicators.MACDSlow)
	setInt(&r.Indicators.MACDSignal, f.Indicators.MACDSignal)
	setInt(&r.Indicators.BBPeriod, f.Indicators.BBPeriod)
	setFloat(&r.Indicators.BBStdMult, f.Indicators.BBStdMult)
	setInt(&r.Indicators.ATRPeriod, f.Indicators.ATRPeriod)

	setFloat(&r.Risk.TotalDeposit, f.Risk.TotalDeposit)
	setFloat(&r.Risk.TradeStake, f.Risk.TradeStake)
	setFloat(&r.Risk.Long.TPATRMult, f.Risk.Long.TPATRMult)
	setFloat(&r.Risk.Long.SLATRMult, f.Risk.Long.SLATRMult)
	setFloat(&r.Risk.Long.MaxSARATRMult, f.Risk.Long.MaxSARATRMult)
	setFloat(&r.Risk.Short.TPATRMult, f.Risk.Short.TPATRMult)
	setFloat(&r.Risk.Short.SLATRMult, f.Risk.Short.SLATRMult)
	setFloat(&r.Risk.Short.MaxSARATRMult, f.Risk.Short.MaxSARATRMult)

	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
