// Package timeutil normalizes user-supplied date and time strings into the
// instants the rest of the pipeline works with.
//
// Sub-daily requests are expressed by the caller in a local timezone and
// must be converted to UTC before row counting and window planning. Daily
// requests stay zone-less: the exchange operates on UTC calendar days equal
// to the caller's literal dates, so no conversion is applied and the
// returned value is only compared against other zone-less values.
package timeutil

import (
	"time"

	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
)

// Default layouts for caller-supplied dates and times, in Go reference-time
// notation.
const (
	DefaultDateLayout = "2006-01-02"
	DefaultTimeLayout = "15:04:05"
)

// Normalize parses a date string and a time string with the supplied
// layouts, combines them into a single instant, and, when toUTC is set,
// interprets the combined wall-clock value in loc and converts it to UTC.
//
// When toUTC is false the result is a zone-less instant carried in UTC; it
// represents the literal wall-clock value and must not be converted further.
//
// Parse failures return an errs.MalformedInputError. Wall-clock values that
// are ambiguous or nonexistent in loc because of a DST transition return an
// errs.AmbiguousLocalTimeError rather than a guessed resolution.
func Normalize(dateStr, timeStr, dateLayout, timeLayout string, toUTC bool, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, &errs.MalformedInputError{Field: "date", Value: dateStr, Err: err}
	}

	clock, err := time.Parse(timeLayout, timeStr)
	if err != nil {
		return time.Time{}, &errs.MalformedInputError{Field: "time", Value: timeStr, Err: err}
	}

	naive := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)

	if !toUTC {
		return naive, nil
	}

	local, err := resolveWallClock(naive, loc)
	if err != nil {
		return time.Time{}, err
	}
	return local.UTC(), nil
}

// resolveWallClock maps a wall-clock value onto the unique instant carrying
// it in loc. The wall clock is passed as a zone-less value in UTC.
//
// time.Date silently normalizes skipped wall clocks and picks one side of
// repeated ones, which is exactly the guessing this pipeline must not do.
// Instead the candidate UTC offsets in effect around the target date are
// enumerated and each is checked for producing the requested wall clock.
// Exactly one match is the normal case; zero means the clock was skipped by
// a DST transition, two means it was repeated.
func resolveWallClock(wall time.Time, loc *time.Location) (time.Time, error) {
	offsets := make(map[int]struct{})
	for _, probe := range []time.Time{wall.Add(-36 * time.Hour), wall, wall.Add(36 * time.Hour)} {
		_, offset := probe.In(loc).Zone()
		offsets[offset] = struct{}{}
	}

	var matches []time.Time
	for offset := range offsets {
		candidate := wall.Add(-time.Duration(offset) * time.Second)
		localized := candidate.In(loc)
		if localized.Year() == wall.Year() &&
			localized.Month() == wall.Month() &&
			localized.Day() == wall.Day() &&
			localized.Hour() == wall.Hour() &&
			localized.Minute() == wall.Minute() &&
			localized.Second() == wall.Second() {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0].In(loc), nil
	case 0:
		return time.Time{}, &errs.AmbiguousLocalTimeError{
			Wall:     wall.Format("2006-01-02 15:04:05"),
			Zone:     loc.String(),
			Repeated: false,
		}
	default:
		return time.Time{}, &errs.AmbiguousLocalTimeError{
			Wall:     wall.Format("2006-01-02 15:04:05"),
			Zone:     loc.String(),
			Repeated: true,
		}
	}
}
