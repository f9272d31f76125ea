package repositories

import (
	"CryptoBreakoutBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new instance of RunRepository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create adds a new Run record to the database
func (r *RunRepository) Create(run *models.Run) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.Create(run).Error
}

// SaveRunWithTrades persists a run and its trade records in one
// transaction, so a run never appears without its trades.
func (r *RunRepository) SaveRunWithTrades(run *models.Run, trades []models.TradeRecord) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		for i := range trades {
			trades[i].RunID = run.ID
		}
		if len(trades) == 0 {
			return nil
		}
		return tx.CreateInBatches(trades, 200).Error
	})
}

// FindByUID retrieves a Run record by its run UID
func (r *RunRepository) FindByUID(runUID string) (*models.Run, error) {
	if runUID == "" {
		return nil, errors.New("invalid run uid")
	}

	var run models.Run
	err := r.db.Where("run_uid = ?", runUID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

// FindTrades retrieves the trade records of a run ordered by trade id
func (r *RunRepository) FindTrades(runID uint) ([]models.TradeRecord, error) {
	if runID == 0 {
		return nil, errors.New("invalid run id")
	}

	var trades []models.TradeRecord
	err := r.db.Where("run_id = ?", runID).
		Order("trade_id ASC").
		Find(&trades).Error
	return trades, err
}

// FindRecent retrieves the most recent runs of a mode
func (r *RunRepository) FindRecent(mode string, limit int) ([]models.Run, error) {
	var runs []models.Run
	q := r.db.Order("created_at DESC").Limit(limit)
	if mode != "" {
		q = q.Where("mode = ?", mode)
	}
	err := q.Find(&runs).Error
	return runs, err
}

// GetRunsByTimeRange retrieves runs created within a time range
func (r *RunRepository) GetRunsByTimeRange(start, end time.Time) ([]models.Run, error) {
	var runs []models.Run
	err := r.db.Where("created_at BETWEEN ? AND ?", start, end).Find(&runs).Error
	return runs, err
}
