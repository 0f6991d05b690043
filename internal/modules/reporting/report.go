// Package reporting turns finished simulation runs into semicolon-delimited
// CSV reports and cross-investor summary statistics.
package reporting

import (
	"strconv"
	"strings"
	"time"

	"github.com/aristath/disposition/internal/modules/investor"
	"github.com/aristath/disposition/internal/modules/simulation"
	"github.com/aristath/disposition/internal/modules/stock"
)

// InvestorRow is one line of the investors report
type InvestorRow struct {
	Investor     string           `msgpack:"investor"`
	Market       string           `msgpack:"market"`
	BuyStrategy  string           `msgpack:"buy_strategy"`
	SellStrategy string           `msgpack:"sell_strategy"`
	Outcome      investor.Outcome `msgpack:"outcome"`
}

// StockRow is one line of the stocks report: the owning investor's row
// followed by the stock's own columns
type StockRow struct {
	InvestorRow      `msgpack:"investor_row"`
	Stock            string `msgpack:"stock"`
	Quality          string `msgpack:"quality"`
	InitialPrice     int    `msgpack:"initial_price"`
	History          []int  `msgpack:"history"`
	PeriodGenerated  int    `msgpack:"period_generated"`
	PeriodSold       *int   `msgpack:"period_sold"`
	GainsPrevious    int    `msgpack:"gains_previous"`
	TotalPriceChange int    `msgpack:"total_price_change"`
}

// Report is everything needed to render the CSV files of one run
type Report struct {
	RunID        string        `msgpack:"run_id"`
	ExperimentID string        `msgpack:"experiment_id"`
	FinishedAt   time.Time     `msgpack:"finished_at"`
	Investors    []InvestorRow `msgpack:"investors"`
	Stocks       []StockRow    `msgpack:"stocks"`
}

// FromResult evaluates every investor of a finished run. Held stocks are
// listed before sold ones for each investor.
func FromResult(res *simulation.Result) Report {
	report := Report{
		RunID:        res.RunID,
		ExperimentID: res.Experiment.ID,
		FinishedAt:   res.FinishedAt,
		Investors:    make([]InvestorRow, 0, len(res.Investors)),
	}

	for _, inv := range res.Investors {
		row := InvestorRow{
			Investor:     inv.Name(),
			Market:       inv.Market().Name(),
			BuyStrategy:  string(inv.BuyStrategy()),
			SellStrategy: string(inv.SellStrategy()),
			Outcome:      inv.Outcome(),
		}
		report.Investors = append(report.Investors, row)

		for _, s := range inv.Portfolio() {
			report.Stocks = append(report.Stocks, newStockRow(row, s))
		}
		for _, s := range inv.SoldStocks() {
			report.Stocks = append(report.Stocks, newStockRow(row, s))
		}
	}
	return report
}

func newStockRow(owner InvestorRow, s *stock.Stock) StockRow {
	row := StockRow{
		InvestorRow:      owner,
		Stock:            s.Name(),
		Quality:          string(s.Quality()),
		InitialPrice:     s.InitialPrice(),
		History:          s.PriceChangeHistory(),
		PeriodGenerated:  s.PeriodGenerated(),
		GainsPrevious:    s.GainsInWarmup(),
		TotalPriceChange: s.CumulativeChangeThroughPeriod(stock.TestPeriods),
	}
	if period, ok := s.PeriodSold(); ok {
		row.PeriodSold = &period
	}
	return row
}

func (r InvestorRow) record() []string {
	o := r.Outcome
	return []string{
		r.Investor,
		r.Market,
		r.BuyStrategy,
		r.SellStrategy,
		strconv.Itoa(o.GoodStocksInitial),
		strconv.Itoa(o.GoodStocksSold),
		strconv.Itoa(o.GoodStocksEnd),
		strconv.Itoa(o.GoodStocksPicked),
		strconv.Itoa(o.GainersSold),
		strconv.Itoa(o.GainersInPortfolio),
		strconv.Itoa(o.TotalEarnings),
		strconv.Itoa(o.TotalUpticks),
	}
}

func (r StockRow) record() []string {
	periodSold := ""
	if r.PeriodSold != nil {
		periodSold = strconv.Itoa(*r.PeriodSold)
	}
	return append(r.InvestorRow.record(),
		r.Stock,
		r.Quality,
		strconv.Itoa(r.InitialPrice),
		joinInts(r.History, ", "),
		strconv.Itoa(r.PeriodGenerated),
		periodSold,
		strconv.Itoa(r.GainsPrevious),
		strconv.Itoa(r.TotalPriceChange),
	)
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
