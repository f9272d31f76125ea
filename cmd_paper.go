package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/backtest"
	"CryptoBreakoutBot/internal/operations/paper"
	"CryptoBreakoutBot/internal/repositories"
)

func paperCmd() *cobra.Command {
	var (
		symbol    string
		timeframe string
		tag       string
	)

	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Run a live paper session against exchange candles",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := buildSource()
			if err != nil {
				return err
			}

			var barRepo *repositories.BarRepository
			if cfg.Database.Enabled() {
				db, err := openDatabase()
				if err != nil {
					return err
				}
				barRepo = repositories.NewBarRepository(db)
			}

			engine := backtest.NewEngine(cfg.Run)
			runner, err := paper.NewRunner(paper.DefaultConfig(symbol, timeframe), src, engine, barRepo)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runner.Run(ctx); err != nil {
				return err
			}

			res := runner.Result()
			printResult(res)
			return saveRun(models.RunModePaper, "", tag, cfg.Run, res)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "BTCUSDT", "market symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "1h", "candle timeframe")
	cmd.Flags().StringVar(&tag, "tag", "", "free-form label stored with the run")
	return cmd
}
