// Package series turns the raw per-window row batches from the exchange
// into a single normalized, ascending-time candle series.
package series

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV sample. Prices and volume are decimal strings taken
// verbatim from the wire; use the accessor methods for arithmetic.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      string    `json:"open"`
	High      string    `json:"high"`
	Low       string    `json:"low"`
	Close     string    `json:"close"`
	Volume    string    `json:"volume"`
}

// Validate checks that every value parses as a decimal, prices are positive,
// volume is non-negative, and the OHLC relationships hold: high is at least
// max(open, close) and low is at most min(open, close).
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp cannot be zero")
	}

	open, err := decimal.NewFromString(c.Open)
	if err != nil {
		return fmt.Errorf("invalid open price %q: %w", c.Open, err)
	}
	high, err := decimal.NewFromString(c.High)
	if err != nil {
		return fmt.Errorf("invalid high price %q: %w", c.High, err)
	}
	low, err := decimal.NewFromString(c.Low)
	if err != nil {
		return fmt.Errorf("invalid low price %q: %w", c.Low, err)
	}
	close, err := decimal.NewFromString(c.Close)
	if err != nil {
		return fmt.Errorf("invalid close price %q: %w", c.Close, err)
	}
	volume, err := decimal.NewFromString(c.Volume)
	if err != nil {
		return fmt.Errorf("invalid volume %q: %w", c.Volume, err)
	}

	for name, price := range map[string]decimal.Decimal{
		"open": open, "high": high, "low": low, "close": close,
	} {
		if price.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%s price must be greater than 0, got %s", name, price)
		}
	}
	if volume.LessThan(decimal.Zero) {
		return fmt.Errorf("volume must be greater than or equal to 0, got %s", volume)
	}

	if high.LessThan(decimal.Max(open, close)) {
		return fmt.Errorf("high %s is below max(open, close) %s", high, decimal.Max(open, close))
	}
	if low.GreaterThan(decimal.Min(open, close)) {
		return fmt.Errorf("low %s is above min(open, close) %s", low, decimal.Min(open, close))
	}

	return nil
}

// OpenDecimal returns the open price for precise calculations.
func (c *Candle) OpenDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Open)
}

// HighDecimal returns the high price for precise calculations.
func (c *Candle) HighDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.High)
}

// LowDecimal returns the low price for precise calculations.
func (c *Candle) LowDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Low)
}

// CloseDecimal returns the close price for precise calculations.
func (c *Candle) CloseDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Close)
}

// VolumeDecimal returns the traded volume for precise calculations.
func (c *Candle) VolumeDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Volume)
}

// String implements fmt.Stringer.
func (c *Candle) String() string {
	return fmt.Sprintf("Candle{%s O: %s, H: %s, L: %s, C: %s, V: %s}",
		c.Timestamp.Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
}
