package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/events"
	"github.com/aristath/disposition/internal/modules/investor"
	"github.com/aristath/disposition/internal/modules/market"
	"github.com/aristath/disposition/internal/modules/stock"
	"github.com/aristath/disposition/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const marketNameBase = "market"

// Result is the finished state of one experiment
type Result struct {
	RunID      string
	Experiment Experiment
	Markets    []*market.Market
	Investors  []*investor.Investor
	Trades     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner drives experiments. Every random draw in a run comes from rng.
type Runner struct {
	rng       *rand.Rand
	generator *stock.Generator
	bus       *events.Bus
	log       zerolog.Logger
	now       func() time.Time
}

// NewRunner creates a runner on a shared random source. bus may be nil.
func NewRunner(rng *rand.Rand, bus *events.Bus, log zerolog.Logger) *Runner {
	return &Runner{
		rng:       rng,
		generator: stock.NewGenerator(rng),
		bus:       bus,
		log:       log.With().Str("service", "simulation").Logger(),
		now:       time.Now,
	}
}

// Run executes one experiment: build markets and investors, size the initial
// portfolios, then for each later period advance every market, regenerate the
// pools and have each investor sell one stock and buy one.
func (r *Runner) Run(ctx context.Context, exp Experiment) (*Result, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		Experiment: exp,
		StartedAt:  r.now(),
	}
	log := r.log.With().Str("experiment", exp.ID).Str("run_id", result.RunID).Logger()

	r.bus.Publish(result.RunID, &events.ExperimentStartedData{
		ExperimentID: exp.ID,
		BuyStrategy:  exp.BuyStrategy,
		SellStrategy: exp.SellStrategy,
		SharedMarket: exp.SharedMarket,
		NumInvestors: exp.NumInvestors,
		NumPeriods:   exp.NumPeriods,
	})
	log.Info().
		Bool("shared_market", exp.SharedMarket).
		Str("buy_strategy", exp.BuyStrategy).
		Str("sell_strategy", exp.SellStrategy).
		Int("investors", exp.NumInvestors).
		Int("periods", exp.NumPeriods).
		Msg("Starting experiment")

	if err := r.populate(result, log); err != nil {
		return nil, err
	}

	periods := utils.NewStopwatch("period")
	period := market.FirstPeriod
	for period < exp.NumPeriods {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("experiment %s interrupted at period %d: %w", exp.ID, period, err)
		}
		period++

		stop := periods.Time()
		trades, err := r.step(result, period)
		stop()
		if err != nil {
			return nil, fmt.Errorf("experiment %s period %d: %w", exp.ID, period, err)
		}
		result.Trades += trades
	}

	result.FinishedAt = r.now()
	periods.Metrics().Log(log)
	r.bus.Publish(result.RunID, &events.ExperimentCompletedData{
		ExperimentID: exp.ID,
		Investors:    len(result.Investors),
		Trades:       result.Trades,
		DurationMS:   float64(result.FinishedAt.Sub(result.StartedAt).Microseconds()) / 1000,
	})
	log.Info().
		Int("trades", result.Trades).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Experiment completed")

	return result, nil
}

// populate creates the markets and investors and sizes each initial portfolio
func (r *Runner) populate(result *Result, log zerolog.Logger) error {
	exp := result.Experiment

	var shared *market.Market
	if exp.SharedMarket {
		m, err := r.newMarket(marketNameBase+"_global", exp)
		if err != nil {
			return err
		}
		shared = m
		result.Markets = append(result.Markets, m)
	}

	for i := 0; i < exp.NumInvestors; i++ {
		m := shared
		if m == nil {
			var err error
			m, err = r.newMarket(fmt.Sprintf("%s_%d", marketNameBase, i), exp)
			if err != nil {
				return err
			}
			result.Markets = append(result.Markets, m)
		}

		inv, err := investor.New(fmt.Sprintf("investor%d", i), m, exp.BuyStrategy, exp.SellStrategy, r.rng, log)
		if err != nil {
			return err
		}
		if err := inv.CreateInitialPortfolio(exp.PortfolioSize); err != nil {
			return err
		}
		result.Investors = append(result.Investors, inv)
	}

	log.Debug().
		Int("markets", len(result.Markets)).
		Int("investors", len(result.Investors)).
		Msg("Initial portfolios created")
	return nil
}

func (r *Runner) newMarket(name string, exp Experiment) (*market.Market, error) {
	cfg := market.Config{Name: name, NumStocks: exp.InitialMarketSize}
	if exp.MarketFixture != "" {
		cfg.TestMode = domain.TestModeRead
		cfg.FixturePath = exp.MarketFixture
	}
	return market.New(cfg, r.generator, r.log)
}

// step runs one period. Periods move first so that sells and buys read the
// new period; a shared market's pool is regenerated once, individual markets
// right before their investor trades.
func (r *Runner) step(result *Result, period int) (int, error) {
	exp := result.Experiment

	for _, m := range result.Markets {
		if err := m.SetCurrentPeriod(period); err != nil {
			return 0, err
		}
	}

	if exp.SharedMarket {
		if err := result.Markets[0].UpdateStocks(exp.NewStocksPerPeriod); err != nil {
			return 0, err
		}
	}

	trades := 0
	for idx, inv := range result.Investors {
		if !exp.SharedMarket {
			if err := result.Markets[idx].UpdateStocks(exp.NewStocksPerPeriod); err != nil {
				return trades, err
			}
		}

		sold, bought, err := inv.Rebalance()
		if err != nil {
			return trades, err
		}
		trades += 2

		r.publishTrade(result.RunID, inv, sold, period, true)
		r.publishTrade(result.RunID, inv, bought, period, false)
	}

	r.bus.Publish(result.RunID, &events.PeriodAdvancedData{
		Period:    period,
		NewStocks: exp.NewStocksPerPeriod,
		Markets:   len(result.Markets),
	})
	return trades, nil
}

func (r *Runner) publishTrade(runID string, inv *investor.Investor, s *stock.Stock, period int, sold bool) {
	r.bus.Publish(runID, &events.TradeData{
		Investor: inv.Name(),
		Market:   inv.Market().Name(),
		Stock:    s.Name(),
		Quality:  string(s.Quality()),
		Period:   period,
		Change:   s.CumulativeChangeThroughPeriod(period),
		Sold:     sold,
	})
}

// RunAll executes experiments in order on the same random source
func (r *Runner) RunAll(ctx context.Context, experiments []Experiment) ([]*Result, error) {
	results := make([]*Result, 0, len(experiments))
	for _, exp := range experiments {
		res, err := r.Run(ctx, exp)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
