package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"CryptoBreakoutBot/config"
)

var (
	flagLogLevel string
	flagParams   string

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cryptobreakoutbot",
		Short: "MACD/Bollinger breakout trading sandbox",
		Long: `Breakout trading sandbox: backtests, paper sessions, parameter
sweeps, and history tooling around one stop-limit breakout strategy.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(flagLogLevel)

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if flagParams != "" {
				if err := cfg.ApplyParamsFile(flagParams); err != nil {
					return err
				}
				log.Info().Str("file", flagParams).Msg("parameter overrides applied")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&flagParams, "params", "", "YAML file overriding run parameters")

	rootCmd.AddCommand(
		backtestCmd(),
		paperCmd(),
		sweepCmd(),
		downloadCmd(),
		mergeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
