package timing

import "time"

// Display formatting (UK locale, 24-hour clock). Stateless, layered on top
// of the scheduling math and never consulted by it.

const (
	displayDateLayout = "02/01/2006"
	displayTimeLayout = "15:04"
)

func FormatDate(t time.Time) string { return t.Format(displayDateLayout) }

func FormatTime(t time.Time) string { return t.Format(displayTimeLayout) }

func FormatDateTime(t time.Time) string {
	return t.Format(displayDateLayout + " " + displayTimeLayout)
}
