package reporting

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution describes one metric across investors
type Distribution struct {
	Mean   float64 `msgpack:"mean"`
	StdDev float64 `msgpack:"std_dev"`
	Median float64 `msgpack:"median"`
	Min    float64 `msgpack:"min"`
	Max    float64 `msgpack:"max"`
}

// Summary aggregates a run's investor outcomes
type Summary struct {
	ExperimentID string       `msgpack:"experiment_id"`
	Investors    int          `msgpack:"investors"`
	Earnings     Distribution `msgpack:"earnings"`
	Upticks      Distribution `msgpack:"upticks"`
	GainersSold  Distribution `msgpack:"gainers_sold"`
	GoodHeld     Distribution `msgpack:"good_held"`
}

// Summarize computes cross-investor statistics for a report
func Summarize(report Report) Summary {
	earnings := make([]float64, len(report.Investors))
	upticks := make([]float64, len(report.Investors))
	gainersSold := make([]float64, len(report.Investors))
	goodHeld := make([]float64, len(report.Investors))
	for i, row := range report.Investors {
		earnings[i] = float64(row.Outcome.TotalEarnings)
		upticks[i] = float64(row.Outcome.TotalUpticks)
		gainersSold[i] = float64(row.Outcome.GainersSold)
		goodHeld[i] = float64(row.Outcome.GoodStocksEnd)
	}

	return Summary{
		ExperimentID: report.ExperimentID,
		Investors:    len(report.Investors),
		Earnings:     describe(earnings),
		Upticks:      describe(upticks),
		GainersSold:  describe(gainersSold),
		GoodHeld:     describe(goodHeld),
	}
}

// describe returns the zero Distribution for no values; a single value has
// zero spread.
func describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Distribution{
		Mean:   mean,
		StdDev: std,
		Median: median(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
}

// median averages the two middle values of an even-length sorted slice
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
