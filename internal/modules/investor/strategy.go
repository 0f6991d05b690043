package investor

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/stock"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// CreateInitialPortfolio replaces the portfolio with numStocks stocks picked
// from the market pool by the buy strategy
func (i *Investor) CreateInitialPortfolio(numStocks int) error {
	picked, err := i.pick(numStocks)
	if err != nil {
		return err
	}
	i.portfolio = picked

	i.log.Debug().
		Str("strategy", string(i.buyStrategy)).
		Int("stocks", len(picked)).
		Msg("Created initial portfolio")
	return nil
}

// Buy adds numStocks stocks picked from the market pool by the buy strategy
// and returns the copies that entered the portfolio
func (i *Investor) Buy(numStocks int) ([]*stock.Stock, error) {
	picked, err := i.pick(numStocks)
	if err != nil {
		return nil, err
	}
	i.portfolio = append(i.portfolio, picked...)

	for _, s := range picked {
		i.log.Debug().
			Int("period", i.market.CurrentPeriod()).
			Object("stock", s).
			Msg("Bought stock")
	}
	return picked, nil
}

// pick selects stocks from the current pool and clones them
func (i *Investor) pick(numStocks int) ([]*stock.Stock, error) {
	pool := i.market.Stocks()
	if numStocks < 0 || numStocks > len(pool) {
		return nil, fmt.Errorf("%w: investor %s cannot pick %d stocks from a pool of %d",
			domain.ErrConfiguration, i.name, numStocks, len(pool))
	}

	var selected []*stock.Stock
	switch i.buyStrategy {
	case domain.BuyRandom:
		selected = i.pickRandom(pool, numStocks)
	case domain.BuyGainers:
		selected = pickGainers(pool, numStocks)
	default:
		return nil, fmt.Errorf("%w: invalid buying strategy %q", domain.ErrConfiguration, i.buyStrategy)
	}

	picked := make([]*stock.Stock, len(selected))
	for k, s := range selected {
		picked[k] = s.Clone()
	}
	return picked, nil
}

func (i *Investor) pickRandom(pool []*stock.Stock, numStocks int) []*stock.Stock {
	idx := make([]int, numStocks)
	sampleuv.WithoutReplacement(idx, len(pool), i.rng)

	selected := make([]*stock.Stock, numStocks)
	for k, j := range idx {
		selected[k] = pool[j]
	}
	return selected
}

// pickGainers ranks the pool by warm-up gains, highest first. The sort is
// stable, so ties keep the market's ordering.
func pickGainers(pool []*stock.Stock, numStocks int) []*stock.Stock {
	ranked := slices.Clone(pool)
	slices.SortStableFunc(ranked, func(a, b *stock.Stock) int {
		return cmp.Compare(b.GainsInWarmup(), a.GainsInWarmup())
	})
	return ranked[:numStocks]
}

// Sell removes exactly one stock chosen by the sell strategy, tags it with the
// market's current period and moves it to the sold stocks
func (i *Investor) Sell() (*stock.Stock, error) {
	if len(i.portfolio) == 0 {
		return nil, fmt.Errorf("investor %s: %w", i.name, domain.ErrEmptyPortfolio)
	}

	period := i.market.CurrentPeriod()
	candidates, err := i.sellCandidates(period)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates = i.portfolio
	}

	chosen := candidates[i.rng.IntN(len(candidates))]
	chosen.MarkSold(period)

	i.portfolio = slices.DeleteFunc(i.portfolio, func(s *stock.Stock) bool { return s == chosen })
	i.soldStocks = append(i.soldStocks, chosen)

	i.log.Debug().
		Int("period", period).
		Str("strategy", string(i.sellStrategy)).
		Object("stock", chosen).
		Msg("Sold stock")
	return chosen, nil
}

// sellCandidates filters the portfolio for the sell strategy. An empty result
// means the caller falls back to the whole portfolio.
func (i *Investor) sellCandidates(period int) ([]*stock.Stock, error) {
	switch i.sellStrategy {
	case domain.SellRandom:
		return nil, nil
	case domain.SellGainers:
		return filterByChange(i.portfolio, period, func(change int) bool { return change > 0 }), nil
	case domain.SellLosers:
		return filterByChange(i.portfolio, period, func(change int) bool { return change < 0 }), nil
	}
	return nil, fmt.Errorf("%w: invalid selling strategy %q", domain.ErrConfiguration, i.sellStrategy)
}

func filterByChange(stocks []*stock.Stock, period int, keep func(int) bool) []*stock.Stock {
	var out []*stock.Stock
	for _, s := range stocks {
		if keep(s.CumulativeChangeThroughPeriod(period)) {
			out = append(out, s)
		}
	}
	return out
}

// Rebalance performs one period's trading: sell one stock, then buy one
func (i *Investor) Rebalance() (sold *stock.Stock, bought *stock.Stock, err error) {
	sold, err = i.Sell()
	if err != nil {
		return nil, nil, err
	}
	picked, err := i.Buy(1)
	if err != nil {
		return sold, nil, err
	}
	return sold, picked[0], nil
}
