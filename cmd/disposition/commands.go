package main

import (
	"fmt"
	"io"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/market"
	"github.com/aristath/disposition/internal/modules/reporting"
	"github.com/aristath/disposition/internal/modules/simulation"
	"github.com/aristath/disposition/internal/modules/stock"
	"github.com/aristath/disposition/internal/utils"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	exp := simulation.DefaultExperiment()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single experiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if exp.MarketFixture != "" {
				exp.MarketFixture = a.cfg.FixturePath(exp.MarketFixture)
			}
			summaries, err := a.runExperiments(cmd.Context(), []simulation.Experiment{exp})
			if err != nil {
				return err
			}
			printSummaries(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&exp.ID, "id", exp.ID, "Experiment id, used in report file names")
	flags.BoolVar(&exp.SharedMarket, "shared-market", exp.SharedMarket, "All investors trade in one market")
	flags.StringVar(&exp.BuyStrategy, "buy", exp.BuyStrategy, "Buying strategy: RANDOM or BUY_GAINERS")
	flags.StringVar(&exp.SellStrategy, "sell", exp.SellStrategy, "Selling strategy: RANDOM, SELL_GAINERS or SELL_LOSERS")
	flags.IntVar(&exp.NumInvestors, "investors", exp.NumInvestors, "Number of investors")
	flags.IntVar(&exp.NumPeriods, "periods", exp.NumPeriods, "Number of periods, at most 7")
	flags.IntVar(&exp.PortfolioSize, "portfolio-size", exp.PortfolioSize, "Stocks bought in the first period")
	flags.IntVar(&exp.NewStocksPerPeriod, "new-stocks", exp.NewStocksPerPeriod, "Stocks generated in every later period")
	flags.IntVar(&exp.InitialMarketSize, "market-size", exp.InitialMarketSize, "Stocks generated in the first period")
	flags.StringVar(&exp.MarketFixture, "market-fixture", "", "Load the first-period pool from this fixture (relative to DISPOSITION_FIXTURE_DIR)")
	return cmd
}

func batchCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "batch <experiments.yaml>",
		Short: "Run every experiment listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			experiments, err := simulation.LoadExperiments(args[0])
			if err != nil {
				return err
			}
			experiments, err = selectExperiments(experiments, utils.SplitList(only))
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			for i := range experiments {
				if experiments[i].MarketFixture != "" {
					experiments[i].MarketFixture = a.cfg.FixturePath(experiments[i].MarketFixture)
				}
			}
			summaries, err := a.runExperiments(cmd.Context(), experiments)
			printSummaries(cmd.OutOrStdout(), summaries)
			return err
		},
	}
	cmd.Flags().StringVar(&only, "only", "", "Comma-separated experiment ids to run; all when empty")
	return cmd
}

// selectExperiments keeps the listed ids in file order. Unknown ids are an error.
func selectExperiments(experiments []simulation.Experiment, ids []string) ([]simulation.Experiment, error) {
	if len(ids) == 0 {
		return experiments, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := make([]simulation.Experiment, 0, len(ids))
	for _, exp := range experiments {
		if wanted[exp.ID] {
			selected = append(selected, exp)
			delete(wanted, exp.ID)
		}
	}
	for _, id := range ids {
		if wanted[id] {
			return nil, fmt.Errorf("%w: no experiment with id %q", domain.ErrConfiguration, id)
		}
	}
	return selected, nil
}

func fixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Write or inspect stock fixture files",
	}

	var numStocks int
	writeCmd := &cobra.Command{
		Use:   "write [file]",
		Short: "Generate a random pool and store it as a fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			path := a.cfg.FixturePath(fixtureName(args))
			m, err := market.New(market.Config{
				Name:        "market_fixture",
				NumStocks:   numStocks,
				TestMode:    domain.TestModeWrite,
				FixturePath: path,
			}, stock.NewGenerator(a.newRNG()), a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d stocks to %s (seed %d)\n", len(m.Stocks()), m.FixturePath(), a.seed)
			return nil
		},
	}
	writeCmd.Flags().IntVarP(&numStocks, "stocks", "n", market.DefaultNumStocks, "Number of stocks to generate")

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Describe the stocks in a fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			m, err := market.New(market.Config{
				Name:        "market_fixture",
				TestMode:    domain.TestModeRead,
				FixturePath: a.cfg.FixturePath(fixtureName(args)),
			}, nil, a.log)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), m.Description())
			return nil
		},
	}

	cmd.AddCommand(writeCmd, showCmd)
	return cmd
}

func fixtureName(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return stock.DefaultFixtureFile
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [snapshot...]",
		Short: "Re-render CSV reports from saved snapshots; lists snapshots when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				paths, err := a.snapshots.List()
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					fmt.Fprintln(out, "no snapshots found")
				}
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			summaries := make([]reporting.Summary, 0, len(args))
			for _, path := range args {
				snap, err := a.snapshots.Load(path)
				if err != nil {
					return err
				}
				files, err := a.reports.Write(snap.Report)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n%s\n", files.Investors, files.Stocks)
				summaries = append(summaries, snap.Summary)
			}
			printSummaries(out, summaries)
			return nil
		},
	}
}

func printSummaries(w io.Writer, summaries []reporting.Summary) {
	for _, s := range summaries {
		fmt.Fprintf(w, "%-40s investors=%-4d earnings mean=%6.2f sd=%6.2f median=%6.2f  upticks mean=%6.2f median=%6.2f\n",
			s.ExperimentID, s.Investors,
			s.Earnings.Mean, s.Earnings.StdDev, s.Earnings.Median,
			s.Upticks.Mean, s.Upticks.Median)
	}
}
