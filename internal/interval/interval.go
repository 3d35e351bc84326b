// Package interval defines the fixed table of sampling intervals supported
// by the exchange candlestick endpoint, mapping each symbol to its duration
// in seconds and its interval class.
//
// The class is a closed enum so that code dispatching on it, most notably
// the row count estimator's inclusive-end correction, can switch over every
// variant instead of comparing interval strings.
package interval

import (
	"sort"
	"time"

	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
)

// Class partitions the supported intervals by the granularity at which the
// exchange considers a range end "aligned". The row count correction rule
// differs per class.
type Class int

const (
	// ClassMinutely covers sub-hour intervals (1m, 5m, 15m); end alignment
	// is judged on the second-of-minute.
	ClassMinutely Class = iota

	// ClassHourly covers hour-scale intervals (1h, 6h); end alignment is
	// judged on the minute-of-hour.
	ClassHourly

	// ClassDaily covers the daily interval, which always requests full
	// calendar days.
	ClassDaily
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassMinutely:
		return "minutely"
	case ClassHourly:
		return "hourly"
	case ClassDaily:
		return "daily"
	default:
		return "unknown"
	}
}

// Interval is one supported sampling interval. Values are immutable and
// defined by the static table below.
type Interval struct {
	Symbol  string
	Seconds int64
	Class   Class
}

// Duration returns the interval length as a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i.Seconds) * time.Second
}

// IsDaily reports whether the interval is the daily interval, which follows
// different timezone and presentation rules throughout the pipeline.
func (i Interval) IsDaily() bool {
	return i.Class == ClassDaily
}

// table is the fixed supported set, matching the granularities accepted by
// the exchange candles endpoint.
var table = map[string]Interval{
	"1m":  {Symbol: "1m", Seconds: 60, Class: ClassMinutely},
	"5m":  {Symbol: "5m", Seconds: 300, Class: ClassMinutely},
	"15m": {Symbol: "15m", Seconds: 900, Class: ClassMinutely},
	"1h":  {Symbol: "1h", Seconds: 3600, Class: ClassHourly},
	"6h":  {Symbol: "6h", Seconds: 21600, Class: ClassHourly},
	"1d":  {Symbol: "1d", Seconds: 86400, Class: ClassDaily},
}

// Lookup resolves an interval symbol against the supported set.
// It returns an errs.UnknownIntervalError for symbols outside the table.
func Lookup(symbol string) (Interval, error) {
	iv, ok := table[symbol]
	if !ok {
		return Interval{}, &errs.UnknownIntervalError{
			Interval:  symbol,
			Supported: Supported(),
		}
	}
	return iv, nil
}

// Supported returns the supported interval symbols ordered from shortest to
// longest duration.
func Supported() []string {
	symbols := make([]string, 0, len(table))
	for symbol := range table {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(a, b int) bool {
		return table[symbols[a]].Seconds < table[symbols[b]].Seconds
	})
	return symbols
}
