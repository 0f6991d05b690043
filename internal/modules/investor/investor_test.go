package investor

import (
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/market"
	"github.com/aristath/disposition/internal/modules/stock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixturePath(name string) string {
	return filepath.Join("testdata", name)
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func newFixtureMarket(t *testing.T, name, fixture string) *market.Market {
	t.Helper()
	m, err := market.New(market.Config{
		Name:        name,
		NumStocks:   market.DefaultNumStocks,
		TestMode:    domain.TestModeRead,
		FixturePath: fixturePath(fixture),
	}, nil, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func newRandomMarket(t *testing.T, name string, numStocks int, seed uint64) *market.Market {
	t.Helper()
	m, err := market.New(market.Config{Name: name, NumStocks: numStocks},
		stock.NewGenerator(rand.NewPCG(seed, seed)), zerolog.Nop())
	require.NoError(t, err)
	return m
}

func names(stocks []*stock.Stock) []string {
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Name()
	}
	slices.Sort(out)
	return out
}

func TestNew_InvalidStrategies(t *testing.T) {
	m := newRandomMarket(t, "strategies", 5, 1)

	inv, err := New("investor1", m, "BUY_LOSERS", "RANDOM", newRNG(1), zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "BUY_LOSERS")
	assert.Nil(t, inv)

	inv, err = New("investor1", m, "RANDOM", "SELL_EVERYTHING", newRNG(1), zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Nil(t, inv)

	_, err = New("investor1", nil, "RANDOM", "RANDOM", newRNG(1), zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = New("investor1", m, "RANDOM", "RANDOM", nil, zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNew_Defaults(t *testing.T) {
	m := newRandomMarket(t, "defaults", 5, 1)
	inv, err := New("investor1", m, "BUY_GAINERS", "SELL_LOSERS", newRNG(1), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "investor1", inv.Name())
	assert.Equal(t, m, inv.Market())
	assert.Equal(t, domain.BuyGainers, inv.BuyStrategy())
	assert.Equal(t, domain.SellLosers, inv.SellStrategy())
	assert.Empty(t, inv.Portfolio())
	assert.Empty(t, inv.SoldStocks())
}

func TestCreateInitialPortfolio_BuyGainers(t *testing.T) {
	m := newFixtureMarket(t, "marketUnitTest.buyGainers", "buy_gainers.json")

	for _, seed := range []uint64{1, 2, 3} {
		inv, err := New("investor1", m, "BUY_GAINERS", "RANDOM", newRNG(seed), zerolog.Nop())
		require.NoError(t, err)

		require.NoError(t, inv.CreateInitialPortfolio(5))
		assert.Equal(t, []string{"A", "G", "H", "J", "O"}, names(inv.Portfolio()))
	}
}

func TestBuyGainers_TiesKeepMarketOrder(t *testing.T) {
	pool := make([]*stock.Stock, 0, 6)
	for _, name := range []string{"F", "B", "D", "A", "E", "C"} {
		s, err := stock.New(name, 1, stock.InitialPrice, domain.QualityBad, []int{1, -1, 5, 1, 1, 1, 1, 1, 1, 1})
		require.NoError(t, err)
		pool = append(pool, s)
	}

	picked := pickGainers(pool, 3)
	require.Len(t, picked, 3)
	assert.Equal(t, "F", picked[0].Name())
	assert.Equal(t, "B", picked[1].Name())
	assert.Equal(t, "D", picked[2].Name())
}

func TestCreateInitialPortfolio_Random(t *testing.T) {
	m := newRandomMarket(t, "random", 20, 4)
	inv, err := New("investor1", m, "RANDOM", "RANDOM", newRNG(4), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, inv.CreateInitialPortfolio(5))
	portfolio := inv.Portfolio()
	require.Len(t, portfolio, 5)

	picked := names(portfolio)
	assert.Len(t, slices.Compact(slices.Clone(picked)), 5, "sampling is without replacement")

	pool := m.Stocks()
	for _, held := range portfolio {
		for _, available := range pool {
			assert.NotSame(t, available, held, "portfolio holds copies")
		}
	}
}

func TestCreateInitialPortfolio_TooMany(t *testing.T) {
	m := newRandomMarket(t, "small", 3, 1)
	for _, strategy := range []string{"RANDOM", "BUY_GAINERS"} {
		inv, err := New("investor1", m, strategy, "RANDOM", newRNG(1), zerolog.Nop())
		require.NoError(t, err)
		assert.ErrorIs(t, inv.CreateInitialPortfolio(4), domain.ErrConfiguration)
		assert.Empty(t, inv.Portfolio())
	}
}

func TestSell_Gainers(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 4, 5} {
		m := newFixtureMarket(t, "Market.sellGainers", "sell_gainers.json")
		inv, err := New("investor1", m, "BUY_GAINERS", "SELL_GAINERS", newRNG(seed), zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, inv.LoadPortfolio(fixturePath("sell_gainers.json")))

		require.NoError(t, m.SetCurrentPeriod(6))
		sold, err := inv.Sell()
		require.NoError(t, err)

		assert.Equal(t, "B", sold.Name())
		period, ok := sold.PeriodSold()
		require.True(t, ok)
		assert.Equal(t, 6, period)
		assert.Equal(t, []string{"I", "M", "P", "R"}, names(inv.Portfolio()))
		assert.Equal(t, []string{"B"}, names(inv.SoldStocks()))
	}
}

func TestSell_Losers(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 4, 5} {
		m := newFixtureMarket(t, "Market.sellLosers", "sell_losers.json")
		inv, err := New("investor2", m, "BUY_GAINERS", "SELL_LOSERS", newRNG(seed), zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, inv.LoadPortfolio(fixturePath("sell_losers.json")))

		require.NoError(t, m.SetCurrentPeriod(6))
		sold, err := inv.Sell()
		require.NoError(t, err)

		assert.Equal(t, "R", sold.Name())
		assert.Equal(t, []string{"B", "I", "M", "P"}, names(inv.Portfolio()))
	}
}

func TestSell_FallsBackToWholePortfolio(t *testing.T) {
	m := newRandomMarket(t, "fallback", 1, 1)
	require.NoError(t, m.SetCurrentPeriod(7))

	inv, err := New("investor1", m, "RANDOM", "SELL_GAINERS", newRNG(8), zerolog.Nop())
	require.NoError(t, err)
	for _, name := range []string{"A", "B", "C"} {
		s, err := stock.New(name, 1, stock.InitialPrice, domain.QualityBad, []int{1, 1, 1, -3, -3, -3, -3, -3, -3, -3})
		require.NoError(t, err)
		require.NoError(t, inv.AddStock(s))
	}

	sold, err := inv.Sell()
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B", "C"}, sold.Name())
	assert.Len(t, inv.Portfolio(), 2)
	assert.Len(t, inv.SoldStocks(), 1)
}

func TestSell_EmptyPortfolio(t *testing.T) {
	m := newRandomMarket(t, "empty", 1, 1)
	inv, err := New("investor1", m, "RANDOM", "RANDOM", newRNG(1), zerolog.Nop())
	require.NoError(t, err)

	_, err = inv.Sell()
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestSell_DoesNotTouchOtherInvestors(t *testing.T) {
	m := newRandomMarket(t, "shared", 5, 12)
	a, err := New("a", m, "BUY_GAINERS", "RANDOM", newRNG(1), zerolog.Nop())
	require.NoError(t, err)
	b, err := New("b", m, "BUY_GAINERS", "RANDOM", newRNG(2), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, a.CreateInitialPortfolio(5))
	require.NoError(t, b.CreateInitialPortfolio(5))

	require.NoError(t, m.SetCurrentPeriod(2))
	for range 5 {
		_, err := a.Sell()
		require.NoError(t, err)
	}

	for _, s := range b.Portfolio() {
		assert.False(t, s.IsSold())
	}
	for _, s := range m.Stocks() {
		assert.False(t, s.IsSold())
	}
}

func TestRebalance(t *testing.T) {
	m := newRandomMarket(t, "rebalance", 20, 21)
	inv, err := New("investor1", m, "RANDOM", "SELL_LOSERS", newRNG(21), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, inv.CreateInitialPortfolio(5))

	for period := 2; period <= 7; period++ {
		require.NoError(t, m.SetCurrentPeriod(period))
		require.NoError(t, m.UpdateStocks(4))

		sold, bought, err := inv.Rebalance()
		require.NoError(t, err)

		soldPeriod, ok := sold.PeriodSold()
		require.True(t, ok)
		assert.Equal(t, period, soldPeriod)
		assert.Equal(t, period, bought.PeriodGenerated())
		assert.False(t, bought.IsSold())

		assert.Len(t, inv.Portfolio(), 5)
		assert.Len(t, inv.SoldStocks(), period-1)
	}

	for _, s := range inv.Portfolio() {
		assert.False(t, s.IsSold())
	}
	for _, s := range inv.SoldStocks() {
		assert.True(t, s.IsSold())
	}
}

func TestLoadFixtures_EnforceSoldInvariant(t *testing.T) {
	m := newRandomMarket(t, "fixtures", 1, 1)
	inv, err := New("investor1", m, "RANDOM", "RANDOM", newRNG(1), zerolog.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, inv.LoadPortfolio(fixturePath("calc_sold.json")), domain.ErrConfiguration)
	assert.ErrorIs(t, inv.LoadSoldStocks(fixturePath("calc_portfolio.json")), domain.ErrConfiguration)
	assert.ErrorIs(t, inv.LoadPortfolio(fixturePath("missing.json")), domain.ErrFixture)

	sold, err := stock.New("A", 1, stock.InitialPrice, domain.QualityGood, make([]int, stock.HistoryLength))
	require.NoError(t, err)
	sold.MarkSold(2)
	assert.ErrorIs(t, inv.AddStock(sold), domain.ErrConfiguration)
}

func TestDescription(t *testing.T) {
	m := newRandomMarket(t, "described", 3, 1)
	inv, err := New("investor9", m, "RANDOM", "SELL_GAINERS", newRNG(1), zerolog.Nop())
	require.NoError(t, err)

	desc := inv.Description()
	assert.Contains(t, desc, "Investor: investor9")
	assert.Contains(t, desc, "buy strategy:  RANDOM")
	assert.Contains(t, desc, "No stocks in portfolio")
	assert.Contains(t, desc, "No stocks in sold stocks portfolio")

	require.NoError(t, inv.CreateInitialPortfolio(2))
	assert.Contains(t, inv.Description(), "Stock: ")
}
