package reminder

import "strings"

type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
	RecurYearly  RecurrencePattern = "yearly"
)

// RecurrenceRule describes how a reminder repeats. Expansion always
// terminates: without an end condition the expander applies a hard cap.
type RecurrenceRule struct {
	Pattern  RecurrencePattern
	Interval int

	// EndDate is an exclusive "2006-01-02" bound: the first occurrence
	// strictly after it is not produced. Empty means no date bound.
	EndDate string

	// MaxOccurrences bounds the number of produced occurrences.
	// Zero means unbounded (the hard cap still applies).
	MaxOccurrences int
}

func (r *RecurrenceRule) normalize() {
	switch r.Pattern {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
	default:
		r.Pattern = RecurDaily
	}
	if r.Interval <= 0 {
		r.Interval = 1
	}
	if r.MaxOccurrences < 0 {
		r.MaxOccurrences = 0
	}
	r.EndDate = strings.TrimSpace(r.EndDate)
}
