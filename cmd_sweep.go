package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/history"
	"CryptoBreakoutBot/internal/operations/sweep"
)

func sweepCmd() *cobra.Command {
	var (
		historyPath string
		trials      int
		workers     int
		seed        int64
		top         int
		tag         string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Random-search strategy parameters over a history file",
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := history.LoadFinamCSV(historyPath)
			if err != nil {
				return err
			}
			log.Info().
				Str("file", historyPath).
				Int("bars", len(bars)).
				Int("trials", trials).
				Int("workers", workers).
				Msg("sweep started")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opt := sweep.NewOptimizer(cfg.Run, sweep.DefaultSpace(), trials, workers, seed)
			results := opt.Run(ctx, bars)

			if top > len(results) {
				top = len(results)
			}
			fmt.Printf("\n=== Top %d Trials ===\n", top)
			for i := 0; i < top; i++ {
				t := results[i]
				if t.Result == nil {
					continue
				}
				fmt.Printf("%2d. return %7.2f%%  trades %3d  winrate %6.2f%%  slope %.4f  width %.4f  ttl %d\n",
					i+1, t.Result.ReturnPct, t.Result.Stats.TradeCount, t.Result.Stats.WinRate,
					t.Config.Strategy.SlopePct, t.Config.Strategy.MinWidthPct, t.Config.PendingTTL)
			}

			if len(results) > 0 && results[0].Result != nil {
				best := results[0]
				return saveRun(models.RunModeSweep, historyPath, tag, best.Config, best.Result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "Finam CSV history file")
	cmd.Flags().IntVar(&trials, "trials", 100, "number of sampled configurations")
	cmd.Flags().IntVar(&workers, "workers", 4, "parallel workers")
	cmd.Flags().Int64Var(&seed, "seed", 1, "sampling seed")
	cmd.Flags().IntVar(&top, "top", 10, "trials to print")
	cmd.Flags().StringVar(&tag, "tag", "", "free-form label stored with the best run")
	_ = cmd.MarkFlagRequired("history")
	return cmd
}
