// Package errs defines the error taxonomy shared by the candlestick
// retrieval pipeline. Every failure surfaced to callers is one of the typed
// errors below, so callers can branch with errors.As without string matching.
// The retryable classification is consumed only by the HTTP transport layer;
// the fetch core itself never retries.
package errs

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// UnknownExchangeError indicates the requested exchange is not present in the
// configured exchange registry.
type UnknownExchangeError struct {
	Exchange  string
	Supported []string
}

// Error implements the error interface.
func (e *UnknownExchangeError) Error() string {
	return fmt.Sprintf("unknown exchange %q, supported exchanges: %s",
		e.Exchange, strings.Join(e.Supported, ", "))
}

// UnknownIntervalError indicates the requested sampling interval is not one
// of the fixed supported symbols.
type UnknownIntervalError struct {
	Interval  string
	Supported []string
}

// Error implements the error interface.
func (e *UnknownIntervalError) Error() string {
	return fmt.Sprintf("unknown interval %q, valid intervals: %s",
		e.Interval, strings.Join(e.Supported, ", "))
}

// InvalidRangeError indicates the requested end instant precedes the start
// instant.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is before start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

// MalformedInputError indicates a caller-supplied value could not be parsed,
// such as a date string that does not match its layout.
type MalformedInputError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *MalformedInputError) Unwrap() error { return e.Err }

// AmbiguousLocalTimeError indicates a wall-clock time does not map to exactly
// one UTC instant in the requested zone. This happens around DST transitions:
// a repeated hour maps to two instants, a skipped hour maps to none. The
// resolution is never guessed.
type AmbiguousLocalTimeError struct {
	Wall     string
	Zone     string
	Repeated bool // true when the wall clock occurs twice, false when it never occurs
}

// Error implements the error interface.
func (e *AmbiguousLocalTimeError) Error() string {
	kind := "does not exist"
	if e.Repeated {
		kind = "is ambiguous"
	}
	return fmt.Sprintf("local time %s %s in %s due to a DST transition", e.Wall, kind, e.Zone)
}

// RowLimitExceededError indicates the pre-flight admission check rejected the
// request before any network call was issued.
type RowLimitExceededError struct {
	Estimated int
	Limit     int
}

// Error implements the error interface.
func (e *RowLimitExceededError) Error() string {
	return fmt.Sprintf("requested range spans %d rows, which exceeds the %d row limit; shorten the timeframe",
		e.Estimated, e.Limit)
}

// UpstreamError indicates the exchange returned a non-success HTTP status.
// It aborts the whole multi-window fetch; no partial series is returned.
type UpstreamError struct {
	Status int
	URL    string
	Body   string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("exchange returned status %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("exchange returned status %d for %s: %s", e.Status, e.URL, e.Body)
}

// IsRetryable reports whether the transport layer may retry the failed
// request. Server errors and rate-limit responses are transient; everything
// else, including every 4xx besides 429, is permanent.
func IsRetryable(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status >= 500 || upstream.Status == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
