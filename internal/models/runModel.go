package models

import (
	"time"
)

// Run is one persisted backtest/paper run: headline metrics plus the
// full parameter and stats payloads as JSON blobs.
type Run struct {
	ID        uint      `gorm:"primaryKey"`
	RunUID    string    `gorm:"index;not null"`
	Mode      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	HistoryPath string
	Tag         string

	FinalBalance float64 `gorm:"type:decimal(20,8)"`
	TotalPnL     float64 `gorm:"type:decimal(20,8)"`
	MaxDrawdown  float64 `gorm:"type:decimal(20,8)"`
	ProfitFactor float64 `gorm:"type:decimal(20,8)"`
	WinRate      float64 `gorm:"type:decimal(20,8)"`
	TradeCount   int

	ParamsJSON string `gorm:"type:text"`
	StatsJSON  string `gorm:"type:text"`
}

const (
	RunModeBacktest = "backtest"
	RunModePaper    = "paper"
	RunModeSweep    = "sweep"
)

// TableName sets the table name for Run model
func (Run) TableName() string {
	return "runs"
}
