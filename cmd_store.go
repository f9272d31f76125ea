package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/backtest"
	"CryptoBreakoutBot/internal/operations/exchange"
	"CryptoBreakoutBot/internal/repositories"
)

func openDatabase() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	if err := db.AutoMigrate(&models.Bar{}, &models.Run{}, &models.TradeRecord{}); err != nil {
		return nil, fmt.Errorf("database migrate: %w", err)
	}
	return db, nil
}

// buildSource picks the configured market data source.
func buildSource() (exchange.OhlcvSource, error) {
	switch cfg.Exchange.Source {
	case "binance", "":
		return exchange.NewBinanceSource(cfg.Exchange.APIKey, cfg.Exchange.SecretKey), nil
	case "okx":
		return exchange.NewOKXSource(), nil
	default:
		return nil, fmt.Errorf("unknown exchange source %q", cfg.Exchange.Source)
	}
}

// saveRun persists a finished run with its trades. A disabled database
// makes it a logged no-op, so every command works without Postgres.
func saveRun(mode, historyPath, tag string, runCfg backtest.Config, res *backtest.Result) error {
	if !cfg.Database.Enabled() {
		log.Debug().Msg("database disabled, run not persisted")
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	repo := repositories.NewRunRepository(db)

	paramsJSON, err := json.Marshal(runCfg)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	run := &models.Run{
		RunUID:       uuid.NewString(),
		Mode:         mode,
		HistoryPath:  historyPath,
		Tag:          tag,
		FinalBalance: res.FinalBalance,
		TotalPnL:     res.Stats.TotalPnL,
		MaxDrawdown:  res.Stats.MaxDrawdown,
		ProfitFactor: res.Stats.ProfitFactor,
		WinRate:      res.Stats.WinRate,
		TradeCount:   res.Stats.TradeCount,
		ParamsJSON:   string(paramsJSON),
		StatsJSON:    string(statsJSON),
	}

	trades := make([]models.TradeRecord, 0, len(res.Trades))
	for _, t := range res.Trades {
		trades = append(trades, models.TradeRecord{
			TradeID:       t.ID,
			Side:          t.Side.String(),
			EntryTime:     t.EntryTime,
			ExitTime:      t.ExitTime,
			EntryPrice:    t.EntryPrice,
			ExitPrice:     t.ExitPrice,
			PnL:           t.PnL,
			PnLPct:        t.PnLPct,
			ExitReason:    t.ExitReason.String(),
			BarsHeld:      t.BarsHeld,
			EntrySignal:   t.EntrySignal.String(),
			EntryBarIndex: t.EntryBarIndex,
			ExitBarIndex:  t.ExitBarIndex,
		})
	}

	if err := repo.SaveRunWithTrades(run, trades); err != nil {
		return err
	}
	log.Info().Str("run", run.RunUID).Str("mode", mode).Int("trades", len(trades)).Msg("run persisted")
	return nil
}

func printResult(res *backtest.Result) {
	s := res.Stats
	fmt.Println("\n=== Run Results ===")
	fmt.Printf("Trades: %d (wins %d / losses %d, win rate %.2f%%)\n",
		s.TradeCount, s.Wins, s.Losses, s.WinRate)
	fmt.Printf("Total PnL: %.2f (%.2f%%)\n", s.TotalPnL, res.ReturnPct)
	fmt.Printf("Final Balance: %.2f\n", res.FinalBalance)
	fmt.Printf("Max Drawdown: %.2f\n", s.MaxDrawdown)
	fmt.Printf("Profit Factor: %.2f  Recovery Factor: %.2f  Payoff Ratio: %.2f\n",
		s.ProfitFactor, s.RecoveryFactor, s.PayoffRatio)
}
