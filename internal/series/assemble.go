package series

import (
	"sort"
	"time"

	"github.com/Sam-analyst/crypto-trading-project/internal/exchange"
	"github.com/Sam-analyst/crypto-trading-project/internal/interval"
)

// Series is an ordered candle sequence, ascending by timestamp.
type Series struct {
	// TickerID is the trading pair the candles belong to.
	TickerID string

	// Interval is the sampling interval of every candle.
	Interval interval.Interval

	// Location is the zone candle timestamps are expressed in. UTC for
	// the daily interval, the caller's local zone otherwise.
	Location *time.Location

	Candles []Candle
}

// Len returns the number of candles.
func (s *Series) Len() int {
	return len(s.Candles)
}

// Header returns the column names of the tabular representation. The daily
// interval drops the start_time column: every daily candle opens at
// midnight, so the time of day carries no information.
func (s *Series) Header() []string {
	if s.Interval.IsDaily() {
		return []string{"date", "open", "high", "low", "close", "volume"}
	}
	return []string{"date", "start_time", "open", "high", "low", "close", "volume"}
}

// Rows returns the candles formatted for tabular rendering, matching Header.
func (s *Series) Rows() [][]string {
	rows := make([][]string, 0, len(s.Candles))
	for i := range s.Candles {
		c := &s.Candles[i]
		if s.Interval.IsDaily() {
			rows = append(rows, []string{
				c.Timestamp.Format("2006-01-02"),
				c.Open, c.High, c.Low, c.Close, c.Volume,
			})
			continue
		}
		rows = append(rows, []string{
			c.Timestamp.Format("2006-01-02"),
			c.Timestamp.Format("15:04:05"),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		})
	}
	return rows
}

// Assemble merges the per-window row batches into one Series. Batches are
// concatenated in window order with within-batch order preserved, each row's
// epoch timestamp becomes a timezone-aware instant, sub-daily instants are
// converted from UTC into loc, and the whole series is sorted ascending.
// The exchange does not guarantee per-window row ordering, so the sort always
// runs.
//
// Assembling an already sorted, already converted input returns the same
// series unchanged. True duplicate timestamps from the exchange are kept
// as-is; the planner's non-overlap invariant already rules out duplicates at
// window boundaries.
func Assemble(tickerID string, batches [][]exchange.RawCandle, iv interval.Interval, loc *time.Location) *Series {
	resultLoc := time.UTC
	if !iv.IsDaily() && loc != nil {
		resultLoc = loc
	}

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}

	candles := make([]Candle, 0, total)
	for _, batch := range batches {
		for _, row := range batch {
			ts := row.Time()
			if !iv.IsDaily() {
				ts = ts.In(resultLoc)
			}
			candles = append(candles, Candle{
				Timestamp: ts,
				Open:      row.Open,
				High:      row.High,
				Low:       row.Low,
				Close:     row.Close,
				Volume:    row.Volume,
			})
		}
	}

	sort.SliceStable(candles, func(a, b int) bool {
		return candles[a].Timestamp.Before(candles[b].Timestamp)
	})

	return &Series{
		TickerID: tickerID,
		Interval: iv,
		Location: resultLoc,
		Candles:  candles,
	}
}
