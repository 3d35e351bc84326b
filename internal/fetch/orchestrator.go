// Package fetch drives the multi-window retrieval of a candle series. The
// orchestrator issues exactly one exchange call per planned window, strictly
// sequentially, paced to respect the upstream rate limit, and fails fast on
// the first error: no partial series is ever returned and nothing here
// retries.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
	"github.com/Sam-analyst/crypto-trading-project/internal/exchange"
	"github.com/Sam-analyst/crypto-trading-project/internal/window"
)

const (
	// MaxSeriesRows is the admission ceiling on the total rows a single
	// request may span, enforced before any network call.
	MaxSeriesRows = 5000

	// DefaultInterCallDelay is the production pacing between consecutive
	// exchange calls.
	DefaultInterCallDelay = time.Second
)

// Admit is the pre-flight admission check: it rejects a request whose
// estimated row count exceeds MaxSeriesRows, before any network cost is
// incurred. This is a check on the whole request, not per window.
func Admit(estimatedRows int) error {
	if estimatedRows > MaxSeriesRows {
		return &errs.RowLimitExceededError{Estimated: estimatedRows, Limit: MaxSeriesRows}
	}
	return nil
}

// Orchestrator fetches planned windows one at a time.
type Orchestrator struct {
	fetcher exchange.CandleFetcher
	pacer   Pacer
	logger  *slog.Logger
}

// NewOrchestrator wires an orchestrator. A nil pacer falls back to the
// production fixed one-second delay; a nil logger falls back to the default.
func NewOrchestrator(fetcher exchange.CandleFetcher, pacer Pacer, logger *slog.Logger) *Orchestrator {
	if pacer == nil {
		pacer = NewFixedDelayPacer(DefaultInterCallDelay)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		fetcher: fetcher,
		pacer:   pacer,
		logger:  logger.With(slog.String("component", "fetch")),
	}
}

// Fetch retrieves every window in order and returns one raw batch per
// window, in the same order. The first failed window aborts the whole fetch;
// accumulated batches are discarded.
func (o *Orchestrator) Fetch(ctx context.Context, tickerID string, windows []window.TimeWindow, granularitySeconds int64) ([][]exchange.RawCandle, error) {
	log := o.logger.With(
		slog.String("trace_id", uuid.NewString()),
		slog.String("ticker", tickerID),
	)
	log.Debug("starting windowed fetch",
		"windows", len(windows),
		"granularity", granularitySeconds)

	batches := make([][]exchange.RawCandle, 0, len(windows))
	for i, w := range windows {
		if err := o.pacer.Pace(ctx); err != nil {
			return nil, fmt.Errorf("pacing interrupted before window %d: %w", i+1, err)
		}

		batch, err := o.fetcher.FetchWindow(ctx, tickerID, w, granularitySeconds)
		if err != nil {
			return nil, fmt.Errorf("window %d of %d [%s, %s]: %w",
				i+1, len(windows),
				w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), err)
		}

		log.Debug("window fetched",
			"window", i+1,
			"of", len(windows),
			"rows", len(batch))
		batches = append(batches, batch)
	}

	return batches, nil
}
