package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	t.Run("span within the cap yields a single window", func(t *testing.T) {
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(100 * time.Minute)

		windows := Plan(start, end, 60, MaxRowsPerWindow)

		require.Len(t, windows, 1)
		assert.Equal(t, start, windows[0].Start)
		assert.Equal(t, end, windows[0].End)
	})

	t.Run("span exactly at the cap yields a single window", func(t *testing.T) {
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(290 * time.Minute)

		windows := Plan(start, end, 60, MaxRowsPerWindow)

		require.Len(t, windows, 1)
		assert.Equal(t, TimeWindow{Start: start, End: end}, windows[0])
	})

	t.Run("650 one-minute candles split into three windows", func(t *testing.T) {
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		// 649 full minutes with an aligned end produces 650 inclusive rows.
		end := start.Add(649 * time.Minute)

		windows := Plan(start, end, 60, MaxRowsPerWindow)

		require.Len(t, windows, 3)

		assert.Equal(t, start, windows[0].Start)
		assert.Equal(t, start.Add(290*time.Minute), windows[0].End)

		// The next window starts one interval after the previous end so the
		// boundary candle is fetched exactly once.
		assert.Equal(t, windows[0].End.Add(time.Minute), windows[1].Start)
		assert.Equal(t, start.Add(581*time.Minute), windows[1].End)

		assert.Equal(t, windows[1].End.Add(time.Minute), windows[2].Start)
		assert.Equal(t, end, windows[2].End)

		// Inclusive row counts per window sum to the estimated total.
		total := 0
		for _, w := range windows {
			total += w.Spans(time.Minute) + 1
		}
		assert.Equal(t, 650, total)
	})

	t.Run("windows are contiguous and within the cap", func(t *testing.T) {
		cases := []struct {
			name            string
			intervalSeconds int64
			steps           int
		}{
			{name: "one minute", intervalSeconds: 60, steps: 1234},
			{name: "five minutes", intervalSeconds: 300, steps: 291},
			{name: "one hour", intervalSeconds: 3600, steps: 875},
			{name: "six hours", intervalSeconds: 21600, steps: 580},
			{name: "one day", intervalSeconds: 86400, steps: 4999},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				step := time.Duration(tc.intervalSeconds) * time.Second
				start := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
				end := start.Add(time.Duration(tc.steps) * step)

				windows := Plan(start, end, tc.intervalSeconds, MaxRowsPerWindow)

				require.NotEmpty(t, windows)
				assert.Equal(t, start, windows[0].Start)
				assert.Equal(t, end, windows[len(windows)-1].End)

				covered := 0
				for i, w := range windows {
					assert.False(t, w.End.Before(w.Start), "window %d inverted", i)
					assert.LessOrEqual(t, w.Spans(step), MaxRowsPerWindow, "window %d too wide", i)
					if i > 0 {
						assert.Equal(t, windows[i-1].End.Add(step), w.Start,
							"window %d does not start one step after its predecessor", i)
					}
					covered += w.Spans(step) + 1
				}
				assert.Equal(t, tc.steps+1, covered, "timestamps covered exactly once")
			})
		}
	})

	t.Run("end just past a boundary yields a degenerate final window", func(t *testing.T) {
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		// 59 seconds past the first window boundary: the clamp leaves a
		// final window one second shorter than its own start. It covers no
		// candle slot, so fetching it returns no rows.
		end := start.Add(290*time.Minute + 59*time.Second)

		windows := Plan(start, end, 60, MaxRowsPerWindow)

		require.Len(t, windows, 2)
		assert.Equal(t, start.Add(290*time.Minute), windows[0].End)
		assert.Equal(t, start.Add(291*time.Minute), windows[1].Start)
		assert.Equal(t, end, windows[1].End)
		assert.True(t, windows[1].End.Before(windows[1].Start))
	})

	t.Run("honors a custom row cap", func(t *testing.T) {
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(25 * time.Minute)

		windows := Plan(start, end, 60, 10)

		require.Len(t, windows, 3)
		assert.Equal(t, start.Add(10*time.Minute), windows[0].End)
		assert.Equal(t, start.Add(11*time.Minute), windows[1].Start)
		assert.Equal(t, start.Add(21*time.Minute), windows[1].End)
		assert.Equal(t, start.Add(22*time.Minute), windows[2].Start)
		assert.Equal(t, end, windows[2].End)
	})
}
