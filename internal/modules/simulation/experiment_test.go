package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/disposition/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExperiment_IsValid(t *testing.T) {
	require.NoError(t, DefaultExperiment().Validate())
}

func TestExperiment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Experiment)
		message string
	}{
		{"missing id", func(e *Experiment) { e.ID = "" }, "ID"},
		{"unknown buy strategy", func(e *Experiment) { e.BuyStrategy = "BUY_LOSERS" }, "not a valid buying strategy"},
		{"unknown sell strategy", func(e *Experiment) { e.SellStrategy = "HOLD" }, "not a valid selling strategy"},
		{"no investors", func(e *Experiment) { e.NumInvestors = 0 }, "NumInvestors"},
		{"too many periods", func(e *Experiment) { e.NumPeriods = 8 }, "NumPeriods"},
		{"portfolio larger than market", func(e *Experiment) { e.PortfolioSize = 21 }, "PortfolioSize"},
		{"no new stocks", func(e *Experiment) { e.NewStocksPerPeriod = 0 }, "NewStocksPerPeriod"},
		{"market beyond alphabet", func(e *Experiment) { e.InitialMarketSize = 27 }, "InitialMarketSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := DefaultExperiment()
			tt.modify(&exp)

			err := exp.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseExperiments(t *testing.T) {
	doc := []byte(`
experiments:
  - id: individual_markets-gainers_test
    shared_market: false
    buy_strategy: BUY_GAINERS
    sell_strategy: SELL_GAINERS
    num_investors: 60
  - id: shared-random-losers
    buy_strategy: RANDOM
    sell_strategy: SELL_LOSERS
    new_stocks_per_period: 6
`)

	experiments, err := ParseExperiments(doc)
	require.NoError(t, err)
	require.Len(t, experiments, 2)

	first := experiments[0]
	assert.Equal(t, "individual_markets-gainers_test", first.ID)
	assert.False(t, first.SharedMarket)
	assert.Equal(t, 60, first.NumInvestors)
	assert.Equal(t, 7, first.NumPeriods)
	assert.Equal(t, 5, first.PortfolioSize)

	second := experiments[1]
	assert.True(t, second.SharedMarket, "omitted fields keep their defaults")
	assert.Equal(t, "RANDOM", second.BuyStrategy)
	assert.Equal(t, 6, second.NewStocksPerPeriod)
	assert.Equal(t, 20, second.NumInvestors)
}

func TestParseExperiments_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "experiments: []"},
		{"not yaml", "experiments: [\n"},
		{"wrong type", "experiments:\n  - num_investors: many\n"},
		{"invalid entry", "experiments:\n  - id: x\n    sell_strategy: SELL_ALL\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExperiments([]byte(tt.doc))
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadExperiments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("experiments:\n  - id: from-file\n"), 0644))

	experiments, err := LoadExperiments(path)
	require.NoError(t, err)
	require.Len(t, experiments, 1)
	assert.Equal(t, "from-file", experiments[0].ID)

	_, err = LoadExperiments(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadExperiments_RepositoryConfig(t *testing.T) {
	experiments, err := LoadExperiments(filepath.Join("..", "..", "..", "configs", "experiments.yaml"))
	require.NoError(t, err)
	require.Len(t, experiments, 4)
	for _, exp := range experiments {
		assert.False(t, exp.SharedMarket)
		assert.Equal(t, 60, exp.NumInvestors)
	}
}
