package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Sam-analyst/crypto-trading-project/internal/config"
	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
	"github.com/Sam-analyst/crypto-trading-project/internal/window"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "crypto-trading-project/1.0"

	// timeParamLayout is the start/end query parameter format the candles
	// endpoint expects, always expressed in UTC.
	timeParamLayout = "2006-01-02 15:04:05"

	// Transport retry settings. Only transient failures are retried; any
	// error that survives the retries is surfaced unchanged.
	defaultMaxRetries = 3
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second

	// maxErrorBodyBytes caps how much of an error response is carried in
	// an UpstreamError.
	maxErrorBodyBytes = 512
)

// Client is a REST adapter for Coinbase-style exchange APIs, driven entirely
// by the URL templates in the exchange's registry entry.
type Client struct {
	cfg        config.ExchangeConfig
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries uint64
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries overrides how many times the transport retries a transient
// failure. Zero disables retrying entirely.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates an adapter for the given exchange registry entry.
func NewClient(cfg config.ExchangeConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:     logger.With(slog.String("component", "exchange"), slog.String("exchange", cfg.Name)),
		maxRetries: defaultMaxRetries,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchWindow implements CandleFetcher. The response is an array of
// [timestamp, low, high, open, close, volume] rows; numeric values are kept
// as their wire text.
func (c *Client) FetchWindow(ctx context.Context, tickerID string, w window.TimeWindow, granularitySeconds int64) ([]RawCandle, error) {
	endpoint := strings.ReplaceAll(c.cfg.CandlestickURL, "{ticker_id}", tickerID)

	params := url.Values{}
	params.Set("granularity", strconv.FormatInt(granularitySeconds, 10))
	params.Set("start", w.Start.UTC().Format(timeParamLayout))
	params.Set("end", w.End.UTC().Format(timeParamLayout))
	fullURL := endpoint + "?" + params.Encode()

	body, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	var rows [][]json.Number
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse candles response: %w", err)
	}

	candles := make([]RawCandle, 0, len(rows))
	for i, row := range rows {
		candle, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		candles = append(candles, candle)
	}

	c.logger.Debug("fetched window",
		"ticker", tickerID,
		"start", w.Start,
		"end", w.End,
		"rows", len(candles))

	return candles, nil
}

// ListTradingPairs implements PairProvider.
func (c *Client) ListTradingPairs(ctx context.Context) ([]TradingPair, error) {
	body, err := c.get(ctx, c.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	var pairs []TradingPair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse trading pairs response: %w", err)
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].ID < pairs[b].ID })

	c.logger.Debug("fetched trading pairs", "count", len(pairs))
	return pairs, nil
}

// get issues a GET request, retrying transient failures with exponential
// backoff. Non-success statuses become an errs.UpstreamError; 4xx responses
// other than 429 are permanent and returned without retry.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			upstream := &errs.UpstreamError{
				Status: resp.StatusCode,
				URL:    fullURL,
				Body:   truncate(data, maxErrorBodyBytes),
			}
			if errs.IsRetryable(upstream) {
				c.logger.Warn("transient upstream failure, will retry",
					"status", resp.StatusCode, "url", fullURL)
				return upstream
			}
			return backoff.Permanent(upstream)
		}

		body = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryDelay
	policy.MaxInterval = maxRetryDelay
	policy.MaxElapsedTime = 0 // bounded by retry count and context instead

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// parseRow converts one wire row into a RawCandle. Rows are fixed-shape
// six-element arrays.
func parseRow(row []json.Number) (RawCandle, error) {
	if len(row) != 6 {
		return RawCandle{}, fmt.Errorf("expected 6 fields, got %d", len(row))
	}

	ts, err := row[0].Int64()
	if err != nil {
		return RawCandle{}, fmt.Errorf("invalid timestamp %q: %w", row[0], err)
	}

	return RawCandle{
		Timestamp: ts,
		Low:       row[1].String(),
		High:      row[2].String(),
		Open:      row[3].String(),
		Close:     row[4].String(),
		Volume:    row[5].String(),
	}, nil
}

func truncate(data []byte, limit int) string {
	s := strings.TrimSpace(string(data))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
