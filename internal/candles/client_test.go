package candles

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sam-analyst/crypto-trading-project/internal/config"
	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
	"github.com/Sam-analyst/crypto-trading-project/internal/fetch"
)

// fakeExchange is a scripted exchange API. It records the query parameters of
// every candles call and replays per-call canned bodies.
type fakeExchange struct {
	pairsBody    string
	pairsCalls   int
	candleBodies []string
	candleCalls  []url.Values
	server       *httptest.Server
}

func newFakeExchange(t *testing.T) *fakeExchange {
	t.Helper()

	f := &fakeExchange{
		pairsBody: `[{"id":"ETH-USD","status":"online"},{"id":"BTC-USD","status":"online"}]`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/" {
			f.pairsCalls++
			fmt.Fprint(w, f.pairsBody)
			return
		}

		call := len(f.candleCalls)
		f.candleCalls = append(f.candleCalls, r.URL.Query())
		if call < len(f.candleBodies) {
			fmt.Fprint(w, f.candleBodies[call])
			return
		}
		fmt.Fprint(w, "[]")
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// registry writes a single-exchange YAML registry pointing at the fake server
// and loads it.
func (f *fakeExchange) registry(t *testing.T) *config.Config {
	t.Helper()

	yaml := fmt.Sprintf(`coinbase:
  base_url: %s/products/
  candlestick_url: %s/products/{ticker_id}/candles
  time_intervals:
    1m: 60
    5m: 300
    15m: 900
    1h: 3600
    6h: 21600
    1d: 86400
`, f.server.URL, f.server.URL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func newTestClient(t *testing.T, f *fakeExchange) *Client {
	t.Helper()
	return New(f.registry(t), WithPacer(fetch.NopPacer{}))
}

func TestGetCandlesDaily(t *testing.T) {
	ctx := context.Background()

	f := newFakeExchange(t)
	// Coinbase returns rows newest first.
	f.candleBodies = []string{
		`[[1672704000,16490.00,16621.00,16531.83,16611.58,10668.73],
		  [1672617600,16542.00,16799.23,16617.48,16672.87,12147.95],
		  [1672531200,16499.01,16789.99,16541.77,16616.75,9244.03]]`,
	}
	client := newTestClient(t, f)

	s, err := client.GetCandles(ctx, Request{
		Exchange:  "coinbase",
		TickerID:  "btc-usd",
		StartDate: "2023-01-01",
		EndDate:   "2023-01-03",
	})
	require.NoError(t, err)

	t.Run("one window covering the full span", func(t *testing.T) {
		require.Len(t, f.candleCalls, 1)
		q := f.candleCalls[0]
		assert.Equal(t, "86400", q.Get("granularity"))
		assert.Equal(t, "2023-01-01 00:00:00", q.Get("start"))
		assert.Equal(t, "2023-01-03 23:59:59", q.Get("end"))
	})

	t.Run("series is sorted ascending in UTC", func(t *testing.T) {
		require.Equal(t, 3, s.Len())
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), s.Candles[0].Timestamp)
		assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), s.Candles[2].Timestamp)
		assert.Equal(t, time.UTC, s.Location)
	})

	t.Run("prices keep their wire text", func(t *testing.T) {
		assert.Equal(t, "16541.77", s.Candles[0].Open)
		assert.Equal(t, "16789.99", s.Candles[0].High)
		assert.Equal(t, "9244.03", s.Candles[0].Volume)
	})

	t.Run("ticker was uppercased before the request", func(t *testing.T) {
		assert.Equal(t, "BTC-USD", s.TickerID)
	})
}

func TestGetCandlesSubDaily(t *testing.T) {
	ctx := context.Background()

	t.Run("converts local bounds to UTC and results back", func(t *testing.T) {
		f := newFakeExchange(t)
		// 14:00 UTC on Jan 15 is 09:00 EST.
		f.candleBodies = []string{`[[1673793000,95.0,105.0,100.0,101.0,12.5]]`}
		client := newTestClient(t, f)

		s, err := client.GetCandles(ctx, Request{
			Exchange:      "coinbase",
			TickerID:      "BTC-USD",
			StartDate:     "2023-01-15",
			EndDate:       "2023-01-15",
			StartTime:     "09:00:00",
			EndTime:       "12:00:00",
			LocalTimezone: "America/New_York",
			Interval:      "1h",
		})
		require.NoError(t, err)

		require.Len(t, f.candleCalls, 1)
		q := f.candleCalls[0]
		assert.Equal(t, "2023-01-15 14:00:00", q.Get("start"))
		assert.Equal(t, "2023-01-15 17:00:00", q.Get("end"))

		require.Equal(t, 1, s.Len())
		got := s.Candles[0].Timestamp
		assert.Equal(t, "America/New_York", got.Location().String())
		assert.Equal(t, 9, got.Hour())
	})

	t.Run("rejects a repeated wall clock instead of guessing", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		// 01:30 occurs twice on the fall-back night.
		_, err := client.GetCandles(ctx, Request{
			Exchange:      "coinbase",
			TickerID:      "BTC-USD",
			StartDate:     "2023-11-05",
			EndDate:       "2023-11-05",
			StartTime:     "01:30:00",
			EndTime:       "06:00:00",
			LocalTimezone: "America/New_York",
			Interval:      "1h",
		})

		var ambiguous *errs.AmbiguousLocalTimeError
		require.ErrorAs(t, err, &ambiguous)
		assert.True(t, ambiguous.Repeated)
		assert.Empty(t, f.candleCalls)
	})
}

func TestGetCandlesWindowing(t *testing.T) {
	ctx := context.Background()

	f := newFakeExchange(t)
	client := newTestClient(t, f)

	// 649 one-minute candles needs three windows under the per-call cap.
	_, err := client.GetCandles(ctx, Request{
		Exchange:      "coinbase",
		TickerID:      "BTC-USD",
		StartDate:     "2023-06-01",
		EndDate:       "2023-06-01",
		StartTime:     "00:00:00",
		EndTime:       "10:48:00",
		LocalTimezone: "UTC",
		Interval:      "1m",
	})
	require.NoError(t, err)

	require.Len(t, f.candleCalls, 3)
	assert.Equal(t, "2023-06-01 00:00:00", f.candleCalls[0].Get("start"))
	assert.Equal(t, "2023-06-01 04:50:00", f.candleCalls[0].Get("end"))
	assert.Equal(t, "2023-06-01 04:51:00", f.candleCalls[1].Get("start"))
	assert.Equal(t, "2023-06-01 09:41:00", f.candleCalls[1].Get("end"))
	assert.Equal(t, "2023-06-01 09:42:00", f.candleCalls[2].Get("start"))
	assert.Equal(t, "2023-06-01 10:48:00", f.candleCalls[2].Get("end"))
}

func TestGetCandlesRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown exchange", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:  "kraken",
			TickerID:  "BTC-USD",
			StartDate: "2023-01-01",
			EndDate:   "2023-01-02",
		})

		var unknown *errs.UnknownExchangeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []string{"coinbase"}, unknown.Supported)
	})

	t.Run("unknown interval", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:  "coinbase",
			TickerID:  "BTC-USD",
			StartDate: "2023-01-01",
			EndDate:   "2023-01-02",
			Interval:  "4h",
		})

		var unknown *errs.UnknownIntervalError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "4h", unknown.Interval)
	})

	t.Run("unlisted ticker", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:  "coinbase",
			TickerID:  "DOGE-USD",
			StartDate: "2023-01-01",
			EndDate:   "2023-01-02",
		})

		var malformed *errs.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "ticker_id", malformed.Field)
		assert.Empty(t, f.candleCalls, "no candles call for an unlisted ticker")
	})

	t.Run("empty ticker", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:  "coinbase",
			TickerID:  "  ",
			StartDate: "2023-01-01",
			EndDate:   "2023-01-02",
		})

		var malformed *errs.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "ticker_id", malformed.Field)
	})

	t.Run("row ceiling enforced before any candles call", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		// Four full days of minute candles is 5760 rows.
		_, err := client.GetCandles(ctx, Request{
			Exchange:      "coinbase",
			TickerID:      "BTC-USD",
			StartDate:     "2023-01-01",
			EndDate:       "2023-01-04",
			LocalTimezone: "UTC",
			Interval:      "1m",
		})

		var limit *errs.RowLimitExceededError
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, 5760, limit.Estimated)
		assert.Equal(t, 5000, limit.Limit)
		assert.Empty(t, f.candleCalls)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:  "coinbase",
			TickerID:  "BTC-USD",
			StartDate: "2023-01-05",
			EndDate:   "2023-01-01",
		})

		var invalid *errs.InvalidRangeError
		require.ErrorAs(t, err, &invalid)
		assert.Empty(t, f.candleCalls)
	})

	t.Run("bad timezone name", func(t *testing.T) {
		f := newFakeExchange(t)
		client := newTestClient(t, f)

		_, err := client.GetCandles(ctx, Request{
			Exchange:      "coinbase",
			TickerID:      "BTC-USD",
			StartDate:     "2023-01-01",
			EndDate:       "2023-01-02",
			LocalTimezone: "Mars/Olympus_Mons",
			Interval:      "1h",
		})

		var malformed *errs.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "local_timezone", malformed.Field)
	})
}

func TestGetCandlesDailyOverridesTimes(t *testing.T) {
	f := newFakeExchange(t)
	f.candleBodies = []string{`[]`}
	client := newTestClient(t, f)

	// Caller-supplied times are ignored for the daily interval.
	_, err := client.GetCandles(context.Background(), Request{
		Exchange:  "coinbase",
		TickerID:  "BTC-USD",
		StartDate: "2023-01-01",
		EndDate:   "2023-01-02",
		StartTime: "09:15:00",
		EndTime:   "10:45:00",
		Interval:  "1d",
	})
	require.NoError(t, err)

	require.Len(t, f.candleCalls, 1)
	assert.Equal(t, "2023-01-01 00:00:00", f.candleCalls[0].Get("start"))
	assert.Equal(t, "2023-01-02 23:59:59", f.candleCalls[0].Get("end"))
}

func TestTradingPairs(t *testing.T) {
	f := newFakeExchange(t)
	client := newTestClient(t, f)

	pairs, err := client.TradingPairs(context.Background(), "coinbase")
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "BTC-USD", pairs[0].ID, "pairs are sorted by id")
	assert.Equal(t, "ETH-USD", pairs[1].ID)

	_, err = client.TradingPairs(context.Background(), "kraken")
	var unknown *errs.UnknownExchangeError
	assert.ErrorAs(t, err, &unknown)
}

func TestValidExchanges(t *testing.T) {
	f := newFakeExchange(t)
	client := newTestClient(t, f)

	assert.Equal(t, []string{"coinbase"}, client.ValidExchanges())
}
