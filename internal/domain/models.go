// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// Quality is the latent label that drives a stock's price-change distribution.
// Investors never observe it directly.
type Quality string

const (
	QualityGood Quality = "good"
	QualityBad  Quality = "bad"
)

// ParseQuality converts a fixture/CSV string into a Quality
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityGood, QualityBad:
		return Quality(s), nil
	}
	return "", fmt.Errorf("%w: unknown stock quality %q", ErrConfiguration, s)
}

// BuyStrategy selects which stocks an investor picks from the market pool
type BuyStrategy string

const (
	// BuyRandom samples uniformly without replacement
	BuyRandom BuyStrategy = "RANDOM"
	// BuyGainers picks the stocks with the most up ticks in the warm-up window
	BuyGainers BuyStrategy = "BUY_GAINERS"
)

// SellStrategy selects which portfolio member an investor disposes of each period
type SellStrategy string

const (
	// SellRandom sells a uniformly chosen holding
	SellRandom SellStrategy = "RANDOM"
	// SellGainers sells a holding whose price is above its starting price
	SellGainers SellStrategy = "SELL_GAINERS"
	// SellLosers sells a holding whose price is below its starting price
	SellLosers SellStrategy = "SELL_LOSERS"
)

// BuyStrategies lists every valid buy strategy in declaration order
var BuyStrategies = []BuyStrategy{BuyRandom, BuyGainers}

// SellStrategies lists every valid sell strategy in declaration order
var SellStrategies = []SellStrategy{SellRandom, SellGainers, SellLosers}

// ParseBuyStrategy validates a strategy name. Names are case-sensitive.
func ParseBuyStrategy(name string) (BuyStrategy, error) {
	for _, s := range BuyStrategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid buying strategy (want one of %s)",
		ErrConfiguration, name, joinNames(BuyStrategies))
}

// ParseSellStrategy validates a strategy name. Names are case-sensitive.
func ParseSellStrategy(name string) (SellStrategy, error) {
	for _, s := range SellStrategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid selling strategy (want one of %s)",
		ErrConfiguration, name, joinNames(SellStrategies))
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// TestMode controls whether a market pool is generated, read from, or written to a fixture file
type TestMode string

const (
	TestModeNone  TestMode = ""
	TestModeRead  TestMode = "ReadStocksFromFile"
	TestModeWrite TestMode = "WriteStocksToFile"
)

// ParseTestMode accepts the fixture-mode names used in stock fixture tooling
func ParseTestMode(s string) (TestMode, error) {
	switch TestMode(s) {
	case TestModeNone, TestModeRead, TestModeWrite:
		return TestMode(s), nil
	}
	return "", fmt.Errorf("%w: unknown test mode %q", ErrConfiguration, s)
}
