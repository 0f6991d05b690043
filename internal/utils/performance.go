package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Stopwatch accumulates the durations of a repeated operation, such as the
// periods of one experiment
type Stopwatch struct {
	name  string
	count int
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// NewStopwatch creates an empty stopwatch for the named operation
func NewStopwatch(name string) *Stopwatch {
	return &Stopwatch{name: name}
}

// Time starts one measurement and returns the function that ends it
//
// Usage:
//
//	stop := sw.Time()
//	doWork()
//	stop()
func (s *Stopwatch) Time() func() {
	start := time.Now()
	return func() {
		s.Record(time.Since(start))
	}
}

// Record adds one measured duration
func (s *Stopwatch) Record(d time.Duration) {
	if s.count == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.count++
	s.total += d
}

// Metrics holds aggregated timings
type Metrics struct {
	Operation string
	Count     int
	Total     time.Duration
	Min       time.Duration
	Max       time.Duration
	Avg       time.Duration
}

// Metrics returns the aggregate of everything recorded so far
func (s *Stopwatch) Metrics() Metrics {
	m := Metrics{
		Operation: s.name,
		Count:     s.count,
		Total:     s.total,
		Min:       s.min,
		Max:       s.max,
	}
	if s.count > 0 {
		m.Avg = s.total / time.Duration(s.count)
	}
	return m
}

// Log writes the metrics at debug level. Nothing is logged before the first measurement.
func (m Metrics) Log(log zerolog.Logger) {
	if m.Count == 0 {
		return
	}

	log.Debug().
		Str("operation", m.Operation).
		Int("count", m.Count).
		Dur("total_duration", m.Total).
		Dur("avg_duration", m.Avg).
		Dur("min_duration", m.Min).
		Dur("max_duration", m.Max).
		Msg("Performance metrics summary")
}
