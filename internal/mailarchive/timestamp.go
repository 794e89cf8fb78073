package mailarchive

import (
	"fmt"
	"strings"
	"time"
)

const (
	mailDateLayout     = "Mon, 2 Jan 2006 15:04:05 -0700"
	mailDateZoneLayout = "Mon, 2 Jan 2006 15:04:05 -0700 (MST)"
)

// ParseMessageDate parses a mail Date header string and normalizes it to UTC.
// Real-world archives mix strict RFC-2822 dates with non-conforming zone
// annotations, so three formats are attempted in order: the canonical layout,
// a layout with a parenthesized zone-name suffix, and finally the canonical
// layout after stripping any trailing parenthesized suffix.
func ParseMessageDate(dateStr string) (time.Time, error) {
	if ts, err := time.Parse(mailDateLayout, dateStr); err == nil {
		return ts.UTC(), nil
	}

	if ts, err := time.Parse(mailDateZoneLayout, dateStr); err == nil {
		return ts.UTC(), nil
	}

	stripped, _, _ := strings.Cut(dateStr, " (")
	if ts, err := time.Parse(mailDateLayout, stripped); err == nil {
		return ts.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("could not parse timestamp: %s", dateStr)
}
