package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/aristath/disposition/internal/config"
	"github.com/aristath/disposition/internal/events"
	"github.com/aristath/disposition/internal/modules/reporting"
	"github.com/aristath/disposition/internal/modules/simulation"
	"github.com/aristath/disposition/internal/modules/snapshots"
	"github.com/aristath/disposition/pkg/logger"
	"github.com/rs/zerolog"
)

// app wires configuration, logging and the output stores for one command
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	seed      uint64
	reports   *reporting.Writer
	snapshots *snapshots.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if resultsDir != "" {
		abs, err := filepath.Abs(resultsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve results directory path: %w", err)
		}
		cfg.ResultsDir = abs
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	runSeed := cfg.Seed
	if runSeed == 0 {
		runSeed = uint64(time.Now().UnixNano())
	}

	return &app{
		cfg:       cfg,
		log:       log,
		seed:      runSeed,
		reports:   reporting.NewWriter(cfg.ResultsDir, log),
		snapshots: snapshots.NewStore(filepath.Join(cfg.ResultsDir, "snapshots"), log),
	}, nil
}

func (a *app) newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(a.seed, a.seed))
}

// runExperiments runs every experiment on one random source, then writes the
// reports and a snapshot of each finished run.
func (a *app) runExperiments(ctx context.Context, experiments []simulation.Experiment) ([]reporting.Summary, error) {
	bus := events.NewBus(a.log)
	bus.SubscribeAll(events.LogHandler(a.log))

	a.log.Info().
		Uint64("seed", a.seed).
		Int("experiments", len(experiments)).
		Str("results_dir", a.cfg.ResultsDir).
		Msg("Starting simulation")

	runner := simulation.NewRunner(a.newRNG(), bus, a.log)
	summaries := make([]reporting.Summary, 0, len(experiments))
	for _, exp := range experiments {
		res, err := runner.Run(ctx, exp)
		if err != nil {
			return summaries, err
		}

		snap := snapshots.New(res, a.seed)
		if _, err := a.reports.Write(snap.Report); err != nil {
			return summaries, err
		}
		if _, err := a.snapshots.Save(snap); err != nil {
			return summaries, err
		}

		a.logSummary(snap.Summary)
		summaries = append(summaries, snap.Summary)
	}
	return summaries, nil
}

func (a *app) logSummary(s reporting.Summary) {
	a.log.Info().
		Str("experiment", s.ExperimentID).
		Int("investors", s.Investors).
		Float64("earnings_mean", s.Earnings.Mean).
		Float64("earnings_std", s.Earnings.StdDev).
		Float64("earnings_median", s.Earnings.Median).
		Float64("upticks_mean", s.Upticks.Mean).
		Float64("upticks_median", s.Upticks.Median).
		Float64("gainers_sold_mean", s.GainersSold.Mean).
		Msg("Experiment summary")
}
