// Package main is the entry point for the disposition-effect market simulator.
// It runs experiments, writes the CSV reports and snapshots of every run, and
// manages stock fixtures.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// flags shared by every command; empty values defer to the environment
var (
	resultsDir string
	logLevel   string
	seed       uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "disposition",
		Short: "Disposition-effect stock market simulator",
		Long: `disposition simulates investors who buy and sell stocks of hidden
quality, to compare how selling gainers or losers affects their returns.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&resultsDir, "results-dir", "", "Directory for reports and snapshots (defaults to DISPOSITION_RESULTS_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (defaults to LOG_LEVEL)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed, 0 defers to DISPOSITION_SEED or the clock")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(fixtureCmd())
	rootCmd.AddCommand(reportCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "disposition version %s\n", version)
		},
	}
}
