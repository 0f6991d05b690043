// Package market provides the stock universe investors buy from, one pool per period.
package market

import (
	"fmt"
	"strings"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/stock"
	"github.com/rs/zerolog"
)

// StockNames is the stock-name alphabet. "W" appears twice and "Y" is missing;
// existing fixtures depend on this exact sequence.
var StockNames = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "W", "Z",
}

// MaxStocks is the most stocks a single generation can produce
var MaxStocks = len(StockNames)

// DefaultNumStocks is the pool size when none is configured
const DefaultNumStocks = 20

// FirstPeriod is the period every market starts in
const FirstPeriod = 1

// Config describes how a market builds its first pool
type Config struct {
	Name        string
	NumStocks   int
	TestMode    domain.TestMode
	FixturePath string // read from in TestModeRead, written to in TestModeWrite
}

// Market owns the pool of stocks available in its current period
type Market struct {
	name          string
	testMode      domain.TestMode
	fixturePath   string
	stocks        []*stock.Stock
	currentPeriod int
	generator     *stock.Generator
	log           zerolog.Logger
}

// New creates a market and fills its first pool. Nothing is created if the
// requested stock count exceeds the name alphabet.
func New(cfg Config, generator *stock.Generator, log zerolog.Logger) (*Market, error) {
	if cfg.NumStocks > MaxStocks {
		return nil, fmt.Errorf("%w: no more than %d stocks can be created, requested %d",
			domain.ErrConfiguration, MaxStocks, cfg.NumStocks)
	}
	if cfg.NumStocks < 0 {
		return nil, fmt.Errorf("%w: stock count must not be negative", domain.ErrConfiguration)
	}

	m := &Market{
		name:          cfg.Name,
		testMode:      cfg.TestMode,
		fixturePath:   cfg.FixturePath,
		currentPeriod: FirstPeriod,
		generator:     generator,
		log:           log.With().Str("component", "market").Str("market", cfg.Name).Logger(),
	}

	switch cfg.TestMode {
	case domain.TestModeRead:
		if err := m.LoadStocks(cfg.FixturePath); err != nil {
			return nil, err
		}
	case domain.TestModeNone, domain.TestModeWrite:
		if err := m.UpdateStocks(cfg.NumStocks); err != nil {
			return nil, err
		}
		if cfg.TestMode == domain.TestModeWrite {
			if m.fixturePath == "" {
				m.fixturePath = stock.DefaultFixtureFile
			}
			if err := m.WriteStocks(m.fixturePath); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown test mode %q", domain.ErrConfiguration, cfg.TestMode)
	}

	return m, nil
}

// Name returns the market name
func (m *Market) Name() string { return m.name }

// TestMode returns how the first pool was obtained
func (m *Market) TestMode() domain.TestMode { return m.testMode }

// FixturePath returns the fixture file the market read or wrote, if any
func (m *Market) FixturePath() string { return m.fixturePath }

// CurrentPeriod returns the market's period counter
func (m *Market) CurrentPeriod() int { return m.currentPeriod }

// SetCurrentPeriod moves the period counter. The driver owns period advancement.
func (m *Market) SetCurrentPeriod(period int) error {
	if period < FirstPeriod {
		return fmt.Errorf("%w: period %d is before the first period", domain.ErrOutOfRange, period)
	}
	m.currentPeriod = period
	return nil
}

// Stocks returns the current pool. The stocks are shared; callers that keep
// one must Clone it.
func (m *Market) Stocks() []*stock.Stock {
	out := make([]*stock.Stock, len(m.stocks))
	copy(out, m.stocks)
	return out
}

// Generate produces n random stocks named from the alphabet in order, tagged
// with the current period
func (m *Market) Generate(n int) ([]*stock.Stock, error) {
	if n > MaxStocks {
		return nil, fmt.Errorf("%w: no more than %d stocks can be created, requested %d",
			domain.ErrConfiguration, MaxStocks, n)
	}
	if m.generator == nil {
		return nil, fmt.Errorf("%w: market %s has no stock generator", domain.ErrConfiguration, m.name)
	}

	stocks := make([]*stock.Stock, 0, n)
	for i := 0; i < n; i++ {
		stocks = append(stocks, m.generator.NewRandom(StockNames[i], m.currentPeriod))
	}
	return stocks, nil
}

// UpdateStocks replaces the pool with n freshly generated stocks. Stocks from
// earlier periods are not retained.
func (m *Market) UpdateStocks(n int) error {
	stocks, err := m.Generate(n)
	if err != nil {
		return err
	}
	m.stocks = stocks

	m.log.Debug().
		Int("period", m.currentPeriod).
		Int("stocks", len(stocks)).
		Msg("Generated stock pool")
	return nil
}

// LoadStocks replaces the pool with the stocks recorded in a fixture file
func (m *Market) LoadStocks(path string) error {
	stocks, err := stock.ReadFixtureFile(path)
	if err != nil {
		return fmt.Errorf("market %s: %w", m.name, err)
	}
	m.stocks = stocks
	m.fixturePath = path

	m.log.Debug().
		Str("path", path).
		Int("stocks", len(stocks)).
		Msg("Loaded stock pool from fixture")
	return nil
}

// WriteStocks stores the current pool in a fixture file
func (m *Market) WriteStocks(path string) error {
	if err := stock.WriteFixtureFile(path, m.stocks); err != nil {
		return fmt.Errorf("market %s: %w", m.name, err)
	}

	m.log.Info().
		Str("path", path).
		Int("stocks", len(m.stocks)).
		Msg("Wrote stock pool to fixture")
	return nil
}

// Description renders the market and every pooled stock
func (m *Market) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market name: %s\n", m.name)
	fmt.Fprintf(&b, "  current period: %d\n", m.currentPeriod)
	if len(m.stocks) == 0 {
		b.WriteString("  Market has no stocks\n")
		return b.String()
	}
	for _, s := range m.stocks {
		b.WriteString(s.Description())
	}
	return b.String()
}
