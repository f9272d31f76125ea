package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"CryptoBreakoutBot/internal/operations/download"
	"CryptoBreakoutBot/internal/operations/exchange"
)

func downloadCmd() *cobra.Command {
	var (
		symbol    string
		timeframe string
		days      int
		out       string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download candle history into a Finam CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := buildSource()
			if err != nil {
				return err
			}
			ranged, ok := src.(exchange.RangeSource)
			if !ok {
				return fmt.Errorf("source %s cannot page historical data, use binance", src.Name())
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			end := time.Now().UTC()
			start := end.AddDate(0, 0, -days)

			d := download.NewDownloader(ranged)
			n, err := d.DownloadToFile(ctx, symbol, timeframe, out, start, end)
			if err != nil {
				return err
			}

			log.Info().Str("file", out).Int("bars", n).Msg("download complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "BTCUSDT", "market symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "1h", "candle timeframe")
	cmd.Flags().IntVar(&days, "days", 30, "days of history to fetch")
	cmd.Flags().StringVar(&out, "out", "", "output CSV path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
