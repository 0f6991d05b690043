// Package simulation provides the experiment driver: it wires markets and
// investors together and steps them through the periods.
package simulation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/disposition/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Experiment holds the parameters of one simulation run
type Experiment struct {
	ID                 string `yaml:"id" validate:"required"`
	SharedMarket       bool   `yaml:"shared_market"`
	BuyStrategy        string `yaml:"buy_strategy" validate:"required"`
	SellStrategy       string `yaml:"sell_strategy" validate:"required"`
	NumInvestors       int    `yaml:"num_investors" validate:"min=1"`
	NumPeriods         int    `yaml:"num_periods" validate:"min=1,max=7"`
	PortfolioSize      int    `yaml:"portfolio_size" validate:"min=1,ltefield=InitialMarketSize"`
	NewStocksPerPeriod int    `yaml:"new_stocks_per_period" validate:"min=1,max=26"`
	InitialMarketSize  int    `yaml:"initial_market_size" validate:"min=1,max=26"`

	// MarketFixture, when set, fills every market's first pool from a stock
	// fixture file instead of generating it.
	MarketFixture string `yaml:"market_fixture"`
}

// DefaultExperiment returns the parameters the study ran with unless told otherwise
func DefaultExperiment() Experiment {
	return Experiment{
		ID:                 "no_experiment_id_set",
		SharedMarket:       true,
		BuyStrategy:        string(domain.BuyGainers),
		SellStrategy:       string(domain.SellGainers),
		NumInvestors:       20,
		NumPeriods:         7,
		PortfolioSize:      5,
		NewStocksPerPeriod: 4,
		InitialMarketSize:  20,
	}
}

var validate = validator.New()

// Validate checks ranges and strategy names. All failures are configuration errors.
func (e Experiment) Validate() error {
	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("%w: experiment %q: %s", domain.ErrConfiguration, e.ID, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: experiment %q: %v", domain.ErrConfiguration, e.ID, err)
	}
	if _, err := domain.ParseBuyStrategy(e.BuyStrategy); err != nil {
		return fmt.Errorf("experiment %q: %w", e.ID, err)
	}
	if _, err := domain.ParseSellStrategy(e.SellStrategy); err != nil {
		return fmt.Errorf("experiment %q: %w", e.ID, err)
	}
	return nil
}

type experimentFile struct {
	Experiments []yaml.Node `yaml:"experiments"`
}

// LoadExperiments reads a YAML list of experiments. Fields an entry leaves
// out keep their DefaultExperiment values.
func LoadExperiments(path string) ([]Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiments file: %w", err)
	}
	return ParseExperiments(data)
}

// ParseExperiments decodes and validates a YAML experiments document
func ParseExperiments(data []byte) ([]Experiment, error) {
	var file experimentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse experiments: %v", domain.ErrConfiguration, err)
	}
	if len(file.Experiments) == 0 {
		return nil, fmt.Errorf("%w: no experiments defined", domain.ErrConfiguration)
	}

	experiments := make([]Experiment, 0, len(file.Experiments))
	for i := range file.Experiments {
		exp := DefaultExperiment()
		if err := file.Experiments[i].Decode(&exp); err != nil {
			return nil, fmt.Errorf("%w: experiment %d: %v", domain.ErrConfiguration, i, err)
		}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		experiments = append(experiments, exp)
	}
	return experiments, nil
}
