package models

import (
	"time"
)

// Bar is a single OHLCV sample. Bars are immutable once produced and a
// bar sequence is always ordered by Timestamp ascending.
type Bar struct {
	ID        uint      `gorm:"primaryKey"`
	Ticker    string    `gorm:"uniqueIndex:idx_bars_key;not null"`
	Period    int       `gorm:"uniqueIndex:idx_bars_key;not null"` // minutes
	Timestamp time.Time `gorm:"uniqueIndex:idx_bars_key;not null"`
	Open      float64   `gorm:"type:decimal(20,8)"`
	High      float64   `gorm:"type:decimal(20,8)"`
	Low       float64   `gorm:"type:decimal(20,8)"`
	Close     float64   `gorm:"type:decimal(20,8)"`
	Volume    float64   `gorm:"type:decimal(20,8)"`
}

// TableName sets the table name for Bar model
func (Bar) TableName() string {
	return "bars"
}
