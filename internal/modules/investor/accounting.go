package investor

import (
	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/market"
	"github.com/aristath/disposition/internal/modules/stock"
)

// Outcome is the per-investor result row
type Outcome struct {
	GoodStocksInitial  int `json:"numGoodStocksInitial" msgpack:"good_stocks_initial"`
	GoodStocksSold     int `json:"numGoodStocksSold" msgpack:"good_stocks_sold"`
	GoodStocksEnd      int `json:"numGoodStocksEnd" msgpack:"good_stocks_end"`
	GoodStocksPicked   int `json:"numGoodStocksPicked" msgpack:"good_stocks_picked"`
	GainersSold        int `json:"numGainersSold" msgpack:"gainers_sold"`
	GainersInPortfolio int `json:"numGainersInPortfolio" msgpack:"gainers_in_portfolio"`
	TotalEarnings      int `json:"totalEarnings" msgpack:"total_earnings"`
	TotalUpticks       int `json:"totalUpticks" msgpack:"total_upticks"`
}

// Outcome evaluates every accounting query as of the market's current period
func (i *Investor) Outcome() Outcome {
	return Outcome{
		GoodStocksInitial:  i.CountGoodInitial(),
		GoodStocksSold:     i.CountGoodSold(),
		GoodStocksEnd:      i.CountGoodHeld(),
		GoodStocksPicked:   i.CountGoodPicked(),
		GainersSold:        i.CountGainersSold(),
		GainersInPortfolio: i.CountGainersHeld(),
		TotalEarnings:      i.TotalEarnings(),
		TotalUpticks:       i.TotalUpticks(),
	}
}

// CountGoodHeld counts good stocks still in the portfolio
func (i *Investor) CountGoodHeld() int {
	return count(i.portfolio, isGood)
}

// CountGoodSold counts good stocks that were sold
func (i *Investor) CountGoodSold() int {
	return count(i.soldStocks, isGood)
}

// CountGoodInitial counts good stocks from the first period, held or sold
func (i *Investor) CountGoodInitial() int {
	fromFirstPeriod := func(s *stock.Stock) bool {
		return isGood(s) && s.PeriodGenerated() == market.FirstPeriod
	}
	return count(i.soldStocks, fromFirstPeriod) + count(i.portfolio, fromFirstPeriod)
}

// CountGoodPicked counts every good stock the investor ever held
func (i *Investor) CountGoodPicked() int {
	return i.CountGoodHeld() + i.CountGoodSold()
}

// CountGainersSold counts sold stocks that were up the period before the sale
func (i *Investor) CountGainersSold() int {
	return count(i.soldStocks, func(s *stock.Stock) bool {
		return s.CumulativeChangeThroughPeriod(lastHeldPeriod(s)) > 0
	})
}

// CountGainersHeld counts held stocks that are up as of the current period
func (i *Investor) CountGainersHeld() int {
	period := i.market.CurrentPeriod()
	return count(i.portfolio, func(s *stock.Stock) bool {
		return s.CumulativeChangeThroughPeriod(period) > 0
	})
}

// TotalEarnings sums cumulative change: sold stocks up to the period before
// the sale, held stocks up to the current period
func (i *Investor) TotalEarnings() int {
	total := 0
	for _, s := range i.soldStocks {
		total += s.CumulativeChangeThroughPeriod(lastHeldPeriod(s))
	}
	period := i.market.CurrentPeriod()
	for _, s := range i.portfolio {
		total += s.CumulativeChangeThroughPeriod(period)
	}
	return total
}

// TotalUpticks counts positive deltas in each stock's observed window,
// warm-up included
func (i *Investor) TotalUpticks() int {
	total := 0
	for _, s := range i.soldStocks {
		total += s.UpticksThroughPeriod(lastHeldPeriod(s))
	}
	period := i.market.CurrentPeriod()
	for _, s := range i.portfolio {
		total += s.UpticksThroughPeriod(period)
	}
	return total
}

// lastHeldPeriod is the period before the sale
func lastHeldPeriod(s *stock.Stock) int {
	sold, _ := s.PeriodSold()
	return sold - 1
}

func isGood(s *stock.Stock) bool {
	return s.Quality() == domain.QualityGood
}

func count(stocks []*stock.Stock, match func(*stock.Stock) bool) int {
	n := 0
	for _, s := range stocks {
		if match(s) {
			n++
		}
	}
	return n
}
