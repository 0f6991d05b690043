// Package events provides typed simulation events and a synchronous bus.
package events

// EventType names a kind of simulation event
type EventType string

const (
	ExperimentStarted   EventType = "EXPERIMENT_STARTED"
	PeriodAdvanced      EventType = "PERIOD_ADVANCED"
	StockSold           EventType = "STOCK_SOLD"
	StockBought         EventType = "STOCK_BOUGHT"
	ExperimentCompleted EventType = "EXPERIMENT_COMPLETED"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ExperimentStartedData contains data for ExperimentStarted events
type ExperimentStartedData struct {
	ExperimentID string `json:"experiment_id"`
	BuyStrategy  string `json:"buy_strategy"`
	SellStrategy string `json:"sell_strategy"`
	SharedMarket bool   `json:"shared_market"`
	NumInvestors int    `json:"num_investors"`
	NumPeriods   int    `json:"num_periods"`
}

// EventType returns the event type for ExperimentStartedData
func (d *ExperimentStartedData) EventType() EventType {
	return ExperimentStarted
}

// PeriodAdvancedData contains data for PeriodAdvanced events
type PeriodAdvancedData struct {
	Period    int `json:"period"`
	NewStocks int `json:"new_stocks"`
	Markets   int `json:"markets"`
}

// EventType returns the event type for PeriodAdvancedData
func (d *PeriodAdvancedData) EventType() EventType {
	return PeriodAdvanced
}

// TradeData contains data for StockSold and StockBought events
type TradeData struct {
	Investor string `json:"investor"`
	Market   string `json:"market"`
	Stock    string `json:"stock"`
	Quality  string `json:"quality"`
	Period   int    `json:"period"`
	Change   int    `json:"change"` // cumulative change as of the trade period
	Sold     bool   `json:"sold"`
}

// EventType returns StockSold or StockBought depending on the side
func (d *TradeData) EventType() EventType {
	if d.Sold {
		return StockSold
	}
	return StockBought
}

// ExperimentCompletedData contains data for ExperimentCompleted events
type ExperimentCompletedData struct {
	ExperimentID string  `json:"experiment_id"`
	Investors    int     `json:"investors"`
	Trades       int     `json:"trades"`
	DurationMS   float64 `json:"duration_ms"`
}

// EventType returns the event type for ExperimentCompletedData
func (d *ExperimentCompletedData) EventType() EventType {
	return ExperimentCompleted
}
