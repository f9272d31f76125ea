package models

import (
	"time"
)

// TradeRecord is one finalized trade of a run. Records are append-only:
// created when a position fully exits and never mutated afterwards.
type TradeRecord struct {
	ID    uint `gorm:"primaryKey"`
	RunID uint `gorm:"index;not null"`

	TradeID int    `gorm:"not null"` // monotonic within the run
	Side    string `gorm:"not null"`

	EntryTime  time.Time `gorm:"index"`
	ExitTime   time.Time `gorm:"index"`
	EntryPrice float64   `gorm:"type:decimal(20,8)"`
	ExitPrice  float64   `gorm:"type:decimal(20,8)"`

	PnL    float64 `gorm:"type:decimal(20,8)"`
	PnLPct float64 `gorm:"type:decimal(20,8)"`

	ExitReason    string `gorm:"not null"`
	BarsHeld      int
	EntrySignal   string
	EntryBarIndex int
	ExitBarIndex  int

	// Relationships
	Run Run `gorm:"foreignKey:RunID"`
}

// TableName sets the table name for TradeRecord model
func (TradeRecord) TableName() string {
	return "trade_records"
}
