package main

import (
	"github.com/spf13/cobra"

	"CryptoBreakoutBot/internal/operations/history"
)

func mergeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge <file> [file...]",
		Short: "Merge history files, later files winning timestamp collisions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return history.MergeFiles(out, args...)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output CSV path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
