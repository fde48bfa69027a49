package archive

import (
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CurrentDate is the local calendar date shifted by offset days. The feed
// publishes a day behind local time, so callers usually pass -1.
func CurrentDate(now time.Time, offset int) string {
	y, m, d := now.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location()).Format(DateLayout)
}

// FormatShort renders YYYY-MM-DD as MM/DD/YY.
func FormatShort(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("01/02/06")
}

// IsDate reports whether s is a valid YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// EntryURL is where the snapshot of date lives under base.
func EntryURL(base, date string) string {
	return strings.TrimSuffix(base, "/") + "/" + date + ".json"
}
