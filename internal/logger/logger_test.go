package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("builds a stderr text logger by default", func(t *testing.T) {
		log, closer, err := New(DefaultConfig())

		require.NoError(t, err)
		require.NotNil(t, log)
		assert.NoError(t, closer.Close())
	})

	t.Run("builds a json logger", func(t *testing.T) {
		log, closer, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})

		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
		assert.NoError(t, closer.Close())
	})

	t.Run("writes to a rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "candles.log")

		log, closer, err := New(Config{
			Level:     "info",
			Format:    "json",
			Output:    "file",
			FilePath:  path,
			MaxSizeMB: 1,
		})
		require.NoError(t, err)

		log.Info("hello", "k", "v")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
	})

	t.Run("requires a path for file output", func(t *testing.T) {
		_, _, err := New(Config{Output: "file"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown outputs", func(t *testing.T) {
		_, _, err := New(Config{Output: "syslog"})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestComponent(t *testing.T) {
	log, closer, err := New(DefaultConfig())
	require.NoError(t, err)
	defer closer.Close()

	assert.NotNil(t, Component(log, "fetch"))
	assert.NotNil(t, Component(nil, "fetch"))
}
