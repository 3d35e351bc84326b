package window

import "time"

// MaxRowsPerWindow is the number of interval steps a single planned window
// may span. The exchange caps responses at 300 rows per call; 290 leaves a
// safety margin.
const MaxRowsPerWindow = 290

// TimeWindow is one sub-range of the total request span, fetched with a
// single API call. Both endpoints are inclusive. Start never exceeds End
// except in the degenerate final window Plan emits when the span ends
// within one step past a window boundary; such a window covers no candle.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Spans returns the number of interval steps the window covers.
func (w TimeWindow) Spans(step time.Duration) int {
	return int(w.End.Sub(w.Start) / step)
}

// Plan partitions the inclusive span [start, end] into an ordered sequence
// of windows, each spanning at most maxRows interval steps. Consecutive
// windows are separated by exactly one step: the next window starts one
// interval after the previous one ends, so the boundary candle is never
// fetched twice. The final window is clamped to end and may be shorter;
// when end falls strictly between a window boundary and the next step, the
// clamp produces a final window whose end precedes its start and whose
// fetch returns no rows.
//
// Callers should pass MaxRowsPerWindow for maxRows outside of tests.
func Plan(start, end time.Time, intervalSeconds int64, maxRows int) []TimeWindow {
	step := time.Duration(intervalSeconds) * time.Second
	span := step * time.Duration(maxRows)

	cursorEnd := start.Add(span)
	if !cursorEnd.Before(end) {
		return []TimeWindow{{Start: start, End: end}}
	}

	windows := []TimeWindow{{Start: start, End: cursorEnd}}
	for cursorEnd.Before(end) {
		nextStart := cursorEnd.Add(step)
		nextEnd := nextStart.Add(span)
		if nextEnd.After(end) {
			nextEnd = end
		}
		windows = append(windows, TimeWindow{Start: nextStart, End: nextEnd})
		cursorEnd = nextEnd
	}

	return windows
}
