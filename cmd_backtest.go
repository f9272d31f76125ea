package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/backtest"
	"CryptoBreakoutBot/internal/operations/history"
)

func backtestCmd() *cobra.Command {
	var (
		historyPath string
		tag         string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the strategy over a history file",
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := history.LoadFinamCSV(historyPath)
			if err != nil {
				return err
			}
			log.Info().Str("file", historyPath).Int("bars", len(bars)).Msg("history loaded")

			engine := backtest.NewEngine(cfg.Run)
			res, err := engine.Run(bars)
			if err != nil {
				return err
			}

			printResult(res)
			return saveRun(models.RunModeBacktest, historyPath, tag, cfg.Run, res)
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "Finam CSV history file")
	cmd.Flags().StringVar(&tag, "tag", "", "free-form label stored with the run")
	_ = cmd.MarkFlagRequired("history")
	return cmd
}
