// Package exchange talks HTTP to candlestick exchanges. It defines the small
// interfaces the fetch orchestrator and client depend on, the wire-level row
// and trading-pair types, and a REST adapter driven by the configured URL
// templates.
//
// Retry with exponential backoff lives here, in the transport, and nowhere
// else: the fetch core above this package fails fast on the first error it
// sees.
package exchange

import (
	"context"
	"time"

	"github.com/Sam-analyst/crypto-trading-project/internal/window"
)

// CandleFetcher retrieves the raw candle rows for one planned window.
type CandleFetcher interface {
	// FetchWindow issues a single candles request covering the window at
	// the given granularity and returns the rows in the order the exchange
	// sent them. The exchange does not guarantee any ordering.
	FetchWindow(ctx context.Context, tickerID string, w window.TimeWindow, granularitySeconds int64) ([]RawCandle, error)
}

// PairProvider lists the trading pairs an exchange offers.
type PairProvider interface {
	// ListTradingPairs fetches every trading pair, active or not, sorted
	// by pair ID.
	ListTradingPairs(ctx context.Context) ([]TradingPair, error)
}

// Adapter is the full exchange surface the client wires together.
type Adapter interface {
	CandleFetcher
	PairProvider
}

// RawCandle is one row as returned by the candles endpoint, before any
// timezone handling or ordering. Prices and volume are kept as the decimal
// strings from the wire to avoid float rounding.
type RawCandle struct {
	// Timestamp is the candle slot start in epoch seconds, UTC.
	Timestamp int64

	Low    string
	High   string
	Open   string
	Close  string
	Volume string
}

// Time returns the row's timestamp as a UTC instant.
func (r RawCandle) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// TradingPair is one product listed by the exchange.
type TradingPair struct {
	ID              string `json:"id"`
	BaseCurrency    string `json:"base_currency"`
	QuoteCurrency   string `json:"quote_currency"`
	DisplayName     string `json:"display_name"`
	Status          string `json:"status"`
	TradingDisabled bool   `json:"trading_disabled"`
}

// Active reports whether the pair currently trades. The listing includes
// delisted and halted pairs; callers deciding what to fetch should check
// this rather than assuming presence means tradeable.
func (p TradingPair) Active() bool {
	return p.Status == "online" && !p.TradingDisabled
}
