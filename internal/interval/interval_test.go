package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
)

func TestLookup(t *testing.T) {
	t.Run("resolves every supported symbol", func(t *testing.T) {
		expected := map[string]int64{
			"1m":  60,
			"5m":  300,
			"15m": 900,
			"1h":  3600,
			"6h":  21600,
			"1d":  86400,
		}

		for symbol, seconds := range expected {
			iv, err := Lookup(symbol)
			require.NoError(t, err, "symbol %s", symbol)
			assert.Equal(t, symbol, iv.Symbol)
			assert.Equal(t, seconds, iv.Seconds)
		}
	})

	t.Run("assigns interval classes", func(t *testing.T) {
		cases := map[string]Class{
			"1m":  ClassMinutely,
			"5m":  ClassMinutely,
			"15m": ClassMinutely,
			"1h":  ClassHourly,
			"6h":  ClassHourly,
			"1d":  ClassDaily,
		}

		for symbol, class := range cases {
			iv, err := Lookup(symbol)
			require.NoError(t, err)
			assert.Equal(t, class, iv.Class, "symbol %s", symbol)
		}
	})

	t.Run("rejects unsupported symbols", func(t *testing.T) {
		for _, symbol := range []string{"30s", "2h", "1w", "", "1D"} {
			_, err := Lookup(symbol)
			require.Error(t, err, "symbol %q", symbol)

			var unknownErr *errs.UnknownIntervalError
			require.ErrorAs(t, err, &unknownErr)
			assert.Equal(t, symbol, unknownErr.Interval)
			assert.NotEmpty(t, unknownErr.Supported)
		}
	})
}

func TestIntervalDuration(t *testing.T) {
	iv, err := Lookup("6h")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, iv.Duration())
}

func TestIsDaily(t *testing.T) {
	daily, err := Lookup("1d")
	require.NoError(t, err)
	assert.True(t, daily.IsDaily())

	hourly, err := Lookup("1h")
	require.NoError(t, err)
	assert.False(t, hourly.IsDaily())
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"1m", "5m", "15m", "1h", "6h", "1d"}, Supported())
}
