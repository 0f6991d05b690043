// Package investor provides strategy-driven investors: initial portfolio
// sizing, the per-period sell-then-buy rebalance, and outcome accounting over
// held and sold stocks.
package investor

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/stock"
	"github.com/rs/zerolog"
)

// Market is the view of a market an investor needs
type Market interface {
	Name() string
	CurrentPeriod() int
	Stocks() []*stock.Stock
}

// Investor holds a portfolio of stock copies and the stocks it has sold
type Investor struct {
	name         string
	market       Market
	buyStrategy  domain.BuyStrategy
	sellStrategy domain.SellStrategy
	portfolio    []*stock.Stock
	soldStocks   []*stock.Stock
	rng          *rand.Rand
	log          zerolog.Logger
}

// New creates an investor with an empty portfolio. Strategy names are
// validated here; an unknown name is a configuration error.
func New(name string, market Market, buyStrategy, sellStrategy string, rng *rand.Rand, log zerolog.Logger) (*Investor, error) {
	if market == nil {
		return nil, fmt.Errorf("%w: investor %s has no market", domain.ErrConfiguration, name)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: investor %s has no random source", domain.ErrConfiguration, name)
	}

	buy, err := domain.ParseBuyStrategy(buyStrategy)
	if err != nil {
		return nil, fmt.Errorf("investor %s: %w", name, err)
	}
	sell, err := domain.ParseSellStrategy(sellStrategy)
	if err != nil {
		return nil, fmt.Errorf("investor %s: %w", name, err)
	}

	return &Investor{
		name:         name,
		market:       market,
		buyStrategy:  buy,
		sellStrategy: sell,
		rng:          rng,
		log:          log.With().Str("component", "investor").Str("investor", name).Logger(),
	}, nil
}

// Name returns the investor name
func (i *Investor) Name() string { return i.name }

// Market returns the market the investor trades in
func (i *Investor) Market() Market { return i.market }

// BuyStrategy returns the configured buy strategy
func (i *Investor) BuyStrategy() domain.BuyStrategy { return i.buyStrategy }

// SellStrategy returns the configured sell strategy
func (i *Investor) SellStrategy() domain.SellStrategy { return i.sellStrategy }

// Portfolio returns the currently held stocks
func (i *Investor) Portfolio() []*stock.Stock {
	out := make([]*stock.Stock, len(i.portfolio))
	copy(out, i.portfolio)
	return out
}

// SoldStocks returns previously held stocks in the order they were sold
func (i *Investor) SoldStocks() []*stock.Stock {
	out := make([]*stock.Stock, len(i.soldStocks))
	copy(out, i.soldStocks)
	return out
}

// AddStock puts a copy of s into the portfolio. Sold stocks are rejected.
func (i *Investor) AddStock(s *stock.Stock) error {
	if s.IsSold() {
		return fmt.Errorf("%w: stock %s is already sold and cannot be held", domain.ErrConfiguration, s.Name())
	}
	i.portfolio = append(i.portfolio, s.Clone())
	return nil
}

// LoadPortfolio replaces the portfolio with the stocks in a fixture file
// instead of buying from the market
func (i *Investor) LoadPortfolio(path string) error {
	stocks, err := stock.ReadFixtureFile(path)
	if err != nil {
		return fmt.Errorf("investor %s portfolio: %w", i.name, err)
	}
	for _, s := range stocks {
		if s.IsSold() {
			return fmt.Errorf("%w: investor %s portfolio fixture %s holds sold stock %s",
				domain.ErrConfiguration, i.name, path, s.Name())
		}
	}
	i.portfolio = stocks
	return nil
}

// LoadSoldStocks replaces the sold stocks with the stocks in a fixture file
func (i *Investor) LoadSoldStocks(path string) error {
	stocks, err := stock.ReadFixtureFile(path)
	if err != nil {
		return fmt.Errorf("investor %s sold stocks: %w", i.name, err)
	}
	for _, s := range stocks {
		if !s.IsSold() {
			return fmt.Errorf("%w: investor %s sold-stock fixture %s has unsold stock %s",
				domain.ErrConfiguration, i.name, path, s.Name())
		}
	}
	i.soldStocks = stocks
	return nil
}

// Description renders the investor with every held and sold stock
func (i *Investor) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Investor: %s\n", i.name)
	fmt.Fprintf(&b, "  buy strategy:  %s\n", i.buyStrategy)
	fmt.Fprintf(&b, "  sell strategy: %s\n", i.sellStrategy)

	if len(i.portfolio) == 0 {
		b.WriteString("    No stocks in portfolio\n")
	}
	for _, s := range i.portfolio {
		b.WriteString(s.Description())
	}

	if len(i.soldStocks) == 0 {
		b.WriteString("    No stocks in sold stocks portfolio\n")
	}
	for _, s := range i.soldStocks {
		b.WriteString(s.Description())
	}
	return b.String()
}
