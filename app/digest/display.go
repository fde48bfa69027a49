package digest

import (
	"regexp"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	displayLayout = "January 2, 2006"
)

var titleDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// DisplayDate derives the header date of a document. It looks at
// briefing_date, then the unix `date`, then a YYYY-MM-DD inside the
// title, and finally falls back to the title itself.
func DisplayDate(doc *Document, now time.Time) string {
	if briefing := doc.BriefingDate(); briefing != "" {
		day, err := time.ParseInLocation(dateLayout, briefing, now.Location())
		if err != nil {
			return briefing
		}
		return FormatRelative(day, now)
	}

	if seconds, ok := doc.Date(); ok {
		return FormatRelative(time.Unix(seconds, 0).UTC(), now)
	}

	if title := doc.Title(); title != "" {
		if match := titleDatePattern.FindString(title); match != "" {
			if day, err := time.Parse(dateLayout, match); err == nil {
				return FormatRelative(day, now)
			}
		}
		return title
	}

	return ""
}

// FormatRelative renders the calendar day of t as "Today", "Yesterday"
// or a long date, relative to now's calendar day.
func FormatRelative(t, now time.Time) string {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format(displayLayout)
	}
}
