package config

import (
	"CryptoBreakoutBot/internal/operations/backtest"
)

type Config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Run      backtest.Config
}

type ExchangeConfig struct {
	// "binance" or "okx"
	Source    string
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Enabled reports whether run persistence is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" && d.DBName != ""
}

// DSN renders the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" port=" + itoa(d.Port) +
		" sslmode=disable"
}
