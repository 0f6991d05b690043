// Package stock provides the simulated stock: identity, latent quality and a
// fixed price-change history, plus the period-relative price queries built on it.
package stock

import (
	"fmt"
	"strings"

	"github.com/aristath/disposition/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// InitialPrice is the price every generated stock starts at
	InitialPrice = 10
	// HistoryLength is the number of price deltas generated per stock
	HistoryLength = 10
	// WarmupPeriods is the number of leading deltas that happen before the test begins
	WarmupPeriods = 3
	// TestPeriods is the number of observable deltas after the warm-up window
	TestPeriods = HistoryLength - WarmupPeriods
)

// Stock is a single simulated security. The price-change history is fixed at
// construction; only the sold period changes afterwards.
type Stock struct {
	name            string
	initialPrice    int
	quality         domain.Quality
	history         []int
	periodGenerated int
	periodSold      *int
	testing         bool
}

// New builds a stock from explicit fields. Used by fixture decoding and tests;
// random stocks come from Generator.NewRandom.
func New(name string, periodGenerated, initialPrice int, quality domain.Quality, history []int) (*Stock, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: stock name is required", domain.ErrConfiguration)
	}
	if len(history) != HistoryLength {
		return nil, fmt.Errorf("%w: stock %s has %d price changes, want %d",
			domain.ErrConfiguration, name, len(history), HistoryLength)
	}
	if _, err := domain.ParseQuality(string(quality)); err != nil {
		return nil, fmt.Errorf("stock %s: %w", name, err)
	}

	h := make([]int, HistoryLength)
	copy(h, history)

	return &Stock{
		name:            name,
		initialPrice:    initialPrice,
		quality:         quality,
		history:         h,
		periodGenerated: periodGenerated,
	}, nil
}

// Name returns the stock symbol
func (s *Stock) Name() string { return s.name }

// InitialPrice returns the price before the first test period
func (s *Stock) InitialPrice() int { return s.initialPrice }

// Quality returns the latent quality label
func (s *Stock) Quality() domain.Quality { return s.quality }

// PeriodGenerated returns the period the stock entered the market
func (s *Stock) PeriodGenerated() int { return s.periodGenerated }

// Testing reports whether the stock was loaded from a fixture
func (s *Stock) Testing() bool { return s.testing }

// PriceChangeHistory returns a copy of all deltas, warm-up included
func (s *Stock) PriceChangeHistory() []int {
	h := make([]int, len(s.history))
	copy(h, s.history)
	return h
}

// PeriodSold returns the period the holder sold the stock, if it was sold
func (s *Stock) PeriodSold() (int, bool) {
	if s.periodSold == nil {
		return 0, false
	}
	return *s.periodSold, true
}

// IsSold reports whether the stock has a sold period
func (s *Stock) IsSold() bool {
	return s.periodSold != nil
}

// MarkSold tags the stock with the period it was sold in
func (s *Stock) MarkSold(period int) {
	p := period
	s.periodSold = &p
}

// Clone returns an independent copy. Stocks enter a portfolio as clones so
// that one investor marking a sale never touches another holder's copy.
func (s *Stock) Clone() *Stock {
	c := *s
	c.history = make([]int, len(s.history))
	copy(c.history, s.history)
	if s.periodSold != nil {
		p := *s.periodSold
		c.periodSold = &p
	}
	return &c
}

// PriceAtTestPeriod returns the price after n test-period deltas.
// Period 0 is the initial price.
func (s *Stock) PriceAtTestPeriod(n int) (int, error) {
	testHistory := s.history[WarmupPeriods:]
	if n < 0 || n > len(testHistory) {
		return 0, fmt.Errorf("%w: asked for test period %d of stock %s, max defined periods: %d",
			domain.ErrOutOfRange, n, s.name, len(testHistory))
	}
	return s.initialPrice + sum(testHistory[:n]), nil
}

// GainsInWarmup counts the non-negative deltas in the warm-up window.
// Deltas are never zero, so this equals the number of up ticks.
func (s *Stock) GainsInWarmup() int {
	gains := 0
	for _, delta := range s.history[:WarmupPeriods] {
		if delta >= 0 {
			gains++
		}
	}
	return gains
}

// CumulativeChangeThroughPeriod sums the test-period deltas the holder has
// observed as of the given period. A sold stock stops accruing the period
// before it was sold.
func (s *Stock) CumulativeChangeThroughPeriod(asOfPeriod int) int {
	end := s.windowEnd(s.lastObservedPeriod(asOfPeriod))
	if end <= WarmupPeriods {
		return 0
	}
	return sum(s.history[WarmupPeriods:end])
}

// UpticksThroughPeriod counts positive deltas from the start of the history
// (warm-up included) up to the end of the observed window.
func (s *Stock) UpticksThroughPeriod(asOfPeriod int) int {
	upticks := 0
	for _, delta := range s.history[:s.windowEnd(s.lastObservedPeriod(asOfPeriod))] {
		if delta > 0 {
			upticks++
		}
	}
	return upticks
}

func (s *Stock) lastObservedPeriod(asOfPeriod int) int {
	if s.periodSold != nil {
		return min(*s.periodSold-1, asOfPeriod)
	}
	return asOfPeriod
}

// windowEnd maps the last observed period to an exclusive history index.
// A stock generated in period g has its test window start g-1 periods late,
// hence 11 - g - (7 - last).
func (s *Stock) windowEnd(lastPeriod int) int {
	end := HistoryLength + 1 - s.periodGenerated - (TestPeriods - lastPeriod)
	return max(0, min(end, len(s.history)))
}

// Description renders a human-readable multi-line summary
func (s *Stock) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s\n", s.name)
	fmt.Fprintf(&b, "  quality:              %s\n", s.quality)
	fmt.Fprintf(&b, "  initial price:        %d\n", s.initialPrice)
	fmt.Fprintf(&b, "  price change history: %v\n", s.history)
	fmt.Fprintf(&b, "  period generated:     %d\n", s.periodGenerated)
	if sold, ok := s.PeriodSold(); ok {
		fmt.Fprintf(&b, "  period sold:          %d\n", sold)
	} else {
		b.WriteString("  period sold:          -\n")
	}
	return b.String()
}

// MarshalZerologObject lets a stock be logged with Object()
func (s *Stock) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.name).
		Str("quality", string(s.quality)).
		Ints("history", s.history).
		Int("period_generated", s.periodGenerated)
	if sold, ok := s.PeriodSold(); ok {
		e.Int("period_sold", sold)
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
