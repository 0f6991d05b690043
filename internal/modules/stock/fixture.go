package stock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristath/disposition/internal/domain"
)

// Type discriminator values written into every fixture record
const (
	RecordClass  = "Stock"
	RecordModule = "__main__"
)

// DefaultFixtureFile is where a market in write mode stores its pool
const DefaultFixtureFile = "TestStocks.json"

// Record is the flat field map a stock is persisted as. Field order follows
// the sorted-key layout of existing fixture files.
type Record struct {
	Class              string `json:"__class__" msgpack:"class"`
	Module             string `json:"__module__" msgpack:"module"`
	InitialPrice       int    `json:"initialPrice" msgpack:"initial_price"`
	Name               string `json:"name" msgpack:"name"`
	PeriodGenerated    int    `json:"periodGenerated" msgpack:"period_generated"`
	PeriodSold         *int   `json:"periodSold" msgpack:"period_sold"`
	PriceChangeHistory []int  `json:"priceChangeHistory" msgpack:"price_change_history"`
	Quality            string `json:"quality" msgpack:"quality"`
	Testing            bool   `json:"testing" msgpack:"testing"`
}

// recordDecoders is the closed set of record types a fixture may contain
var recordDecoders = map[string]func(json.RawMessage) (*Stock, error){
	RecordClass: decodeStockRecord,
}

// ToRecord converts a stock into its fixture record
func (s *Stock) ToRecord() Record {
	var sold *int
	if s.periodSold != nil {
		p := *s.periodSold
		sold = &p
	}
	return Record{
		Class:              RecordClass,
		Module:             RecordModule,
		InitialPrice:       s.initialPrice,
		Name:               s.name,
		PeriodGenerated:    s.periodGenerated,
		PeriodSold:         sold,
		PriceChangeHistory: s.PriceChangeHistory(),
		Quality:            string(s.quality),
		Testing:            s.testing,
	}
}

// FromRecord rebuilds a stock exactly as recorded. No randomness is involved.
func FromRecord(r Record) (*Stock, error) {
	if r.Class != RecordClass {
		return nil, fmt.Errorf("unknown record type %q", r.Class)
	}
	s, err := New(r.Name, r.PeriodGenerated, r.InitialPrice, domain.Quality(r.Quality), r.PriceChangeHistory)
	if err != nil {
		return nil, err
	}
	if r.PeriodSold != nil {
		s.MarkSold(*r.PeriodSold)
	}
	s.testing = r.Testing
	return s, nil
}

func decodeStockRecord(raw json.RawMessage) (*Stock, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return FromRecord(r)
}

// MarshalFixture encodes stocks as a JSON array of records
func MarshalFixture(stocks []*Stock) ([]byte, error) {
	records := make([]Record, len(stocks))
	for i, s := range stocks {
		records[i] = s.ToRecord()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode stocks: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalFixture decodes a JSON array of records. Each element is routed
// by its __class__ tag; untagged or unknown elements are rejected.
func UnmarshalFixture(data []byte) ([]*Stock, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("expected a JSON array of stock records: %w", err)
	}

	stocks := make([]*Stock, 0, len(elements))
	for i, raw := range elements {
		var tag struct {
			Class string `json:"__class__"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		decode, ok := recordDecoders[tag.Class]
		if !ok {
			return nil, fmt.Errorf("record %d: unknown record type %q", i, tag.Class)
		}
		s, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		stocks = append(stocks, s)
	}
	return stocks, nil
}

// ReadFixtureFile loads stocks from a fixture file
func ReadFixtureFile(path string) ([]*Stock, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: must supply name of input file", domain.ErrConfiguration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FixtureError{Op: "read", Path: path, Err: err}
	}

	stocks, err := UnmarshalFixture(data)
	if err != nil {
		return nil, &domain.FixtureError{Op: "parse", Path: path, Err: err}
	}
	return stocks, nil
}

// WriteFixtureFile stores stocks in a fixture file, replacing any existing one
func WriteFixtureFile(path string, stocks []*Stock) error {
	if path == "" {
		return fmt.Errorf("%w: must supply name of output file", domain.ErrConfiguration)
	}

	data, err := MarshalFixture(stocks)
	if err != nil {
		return &domain.FixtureError{Op: "encode", Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &domain.FixtureError{Op: "write", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &domain.FixtureError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// IsFixtureNotFound reports whether err came from a missing fixture file
func IsFixtureNotFound(err error) bool {
	return errors.Is(err, domain.ErrFixture) && errors.Is(err, os.ErrNotExist)
}
