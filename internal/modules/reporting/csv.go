package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Delimiter separates CSV columns
const Delimiter = ';'

const fileTimeLayout = "060102_1504"

// InvestorHeader names the investors report columns
var InvestorHeader = []string{
	"investorName", "marketName", "buyStrategy", "sellStrategy",
	"numGoodStocksInitial", "numGoodStocksSold", "numGoodStocksEnd", "numGoodStocksPicked",
	"numGainersSold", "numGainersInPortfolio", "totalEarnings", "totalUpticks",
}

// StockHeader names the stocks report columns
var StockHeader = append(append([]string{}, InvestorHeader...),
	"stockName", "stockQuality", "stockInitialPrice", "stockPriceChangeHistory",
	"stockPeriodGenerated", "stockPeriodSold", "stockGainsPrevious", "stockTotalPriceChange",
)

// FileName builds "<yymmdd_HHMM>_<experimentID>_<kind>.csv"
func FileName(at time.Time, experimentID, kind string) string {
	return fmt.Sprintf("%s_%s_%s.csv", at.Format(fileTimeLayout), experimentID, kind)
}

// WriteInvestors writes the header and one row per investor
func WriteInvestors(w io.Writer, rows []InvestorRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, InvestorHeader)
	for _, row := range rows {
		records = append(records, row.record())
	}
	return writeAll(w, records)
}

// WriteStocks writes the header and one row per (investor, stock) pair
func WriteStocks(w io.Writer, rows []StockRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, StockHeader)
	for _, row := range rows {
		records = append(records, row.record())
	}
	return writeAll(w, records)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Files are the paths of one written report
type Files struct {
	Investors string
	Stocks    string
}

// Writer renders reports into a results directory
type Writer struct {
	dir string
	log zerolog.Logger
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string, log zerolog.Logger) *Writer {
	return &Writer{
		dir: dir,
		log: log.With().Str("component", "reporting").Logger(),
	}
}

// Write renders both CSV files, stamped with the report's finish time
func (w *Writer) Write(report Report) (Files, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Files{}, fmt.Errorf("failed to create results directory: %w", err)
	}

	at := report.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}
	files := Files{
		Investors: filepath.Join(w.dir, FileName(at, report.ExperimentID, "investors")),
		Stocks:    filepath.Join(w.dir, FileName(at, report.ExperimentID, "stocks")),
	}

	if err := writeFile(files.Investors, func(f io.Writer) error { return WriteInvestors(f, report.Investors) }); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.Stocks, func(f io.Writer) error { return WriteStocks(f, report.Stocks) }); err != nil {
		return Files{}, err
	}

	w.log.Info().
		Str("experiment", report.ExperimentID).
		Str("investors_file", files.Investors).
		Str("stocks_file", files.Stocks).
		Msg("Reports written")
	return files, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return render(f)
}
