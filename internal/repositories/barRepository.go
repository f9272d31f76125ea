package repositories

import (
	"CryptoBreakoutBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BarRepository struct {
	db *gorm.DB
}

// NewBarRepository creates a new instance of BarRepository
func NewBarRepository(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// Create adds a new Bar record to the database
func (r *BarRepository) Create(bar *models.Bar) error {
	if bar == nil {
		return errors.New("bar cannot be nil")
	}
	return r.db.Create(bar).Error
}

// SaveBatch upserts a batch of bars. A bar is identified by its
// ticker, period, and timestamp; re-saving overwrites the prices.
func (r *BarRepository) SaveBatch(bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "ticker"}, {Name: "period"}, {Name: "timestamp"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).CreateInBatches(bars, 500).Error
}

// GetHistory gets the bar history for a ticker and period within a
// time range, ordered ascending
func (r *BarRepository) GetHistory(ticker string, period int, start, end time.Time) ([]models.Bar, error) {
	if ticker == "" || period <= 0 {
		return nil, errors.New("invalid ticker or period")
	}

	var bars []models.Bar
	err := r.db.Where("ticker = ? AND period = ? AND timestamp BETWEEN ? AND ?",
		ticker, period, start, end).
		Order("timestamp ASC").
		Find(&bars).Error
	return bars, err
}

// GetLatestBar gets the most recent bar for a ticker and period
func (r *BarRepository) GetLatestBar(ticker string, period int) (*models.Bar, error) {
	if ticker == "" || period <= 0 {
		return nil, errors.New("invalid ticker or period")
	}

	var bar models.Bar
	err := r.db.Where("ticker = ? AND period = ?", ticker, period).
		Order("timestamp DESC").
		First(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bar, err
}

// CountBars counts stored bars for a ticker and period
func (r *BarRepository) CountBars(ticker string, period int) (int64, error) {
	var count int64
	err := r.db.Model(&models.Bar{}).
		Where("ticker = ? AND period = ?", ticker, period).
		Count(&count).Error
	return count, err
}

// DeleteHistory removes all bars of a ticker and period
func (r *BarRepository) DeleteHistory(ticker string, period int) error {
	if ticker == "" || period <= 0 {
		return errors.New("invalid ticker or period")
	}
	return r.db.Where("ticker = ? AND period = ?", ticker, period).
		Delete(&models.Bar{}).Error
}
