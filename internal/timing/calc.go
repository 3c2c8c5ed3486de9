// Package timing holds the pure temporal layer of the engine: converting a
// reminder's due date/time plus an offset rule into a concrete instant, and
// expanding recurrence rules into bounded occurrence sequences.
//
// Everything here is synchronous wall-clock arithmetic in local time. No
// timezone conversion happens in this package; display formatting lives in
// format.go and must never influence scheduling math.
package timing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindd/internal/reminder"
)

// ErrInvalidTimingInput marks a malformed date/time on a single timing
// entry. Callers skip that entry rather than aborting the whole schedule.
var ErrInvalidTimingInput = errors.New("invalid timing input")

const dateLayout = "2006-01-02"

// ComputeInstant resolves one notification instant for a reminder's due
// date/time and a single timing rule.
//
// Base instant rules:
//   - dueDate + dueTime when both are present
//   - dueDate at now's time-of-day when only the date is present
//   - now itself when there is no due date at all (defensive fallback)
//
// before subtracts OffsetMinutes, after adds, exact leaves the base as-is.
func ComputeInstant(now time.Time, dueDate, dueTime string, t reminder.NotificationTiming) (time.Time, error) {
	base, err := baseInstant(now, dueDate, dueTime)
	if err != nil {
		return time.Time{}, err
	}

	offset := time.Duration(t.OffsetMinutes) * time.Minute
	switch t.Kind {
	case reminder.TimingBefore:
		return base.Add(-offset), nil
	case reminder.TimingAfter:
		return base.Add(offset), nil
	default:
		return base, nil
	}
}

func baseInstant(now time.Time, dueDate, dueTime string) (time.Time, error) {
	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		return now, nil
	}

	day, err := ParseDate(dueDate)
	if err != nil {
		return time.Time{}, err
	}

	var hour, minute int
	if strings.TrimSpace(dueTime) != "" {
		hour, minute, err = ParseHHMM(dueTime)
		if err != nil {
			return time.Time{}, err
		}
	} else {
		hour, minute = now.Hour(), now.Minute()
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local), nil
}

// ParseDate parses a calendar date "2006-01-02" in local time.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidTimingInput, raw)
	}
	return d, nil
}

// ParseHHMM parses a 24-hour local clock time "15:04".
func ParseHHMM(raw string) (hour, minute int, err error) {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: bad time %q, expected HH:MM", ErrInvalidTimingInput, raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTimingInput, raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTimingInput, raw)
	}
	return h, m, nil
}
