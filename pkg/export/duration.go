package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConvertDurationToMinutes converts an "H:MM" duration into total minutes.
// Inputs without exactly two segments yield 0; a non-numeric segment counts as 0.
func ConvertDurationToMinutes(duration string) int {
	parts := strings.Split(strings.TrimSpace(duration), ":")
	if len(parts) != 2 {
		return 0
	}
	return parseSegment(parts[0])*60 + parseSegment(parts[1])
}

func parseSegment(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatMinutes renders minutes back into "H:MM".
func FormatMinutes(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// EndOfDay returns the last millisecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TimestampedFilename builds "<prefix>_<YYYY-MM-DD>_<HH-MM-SS><suffixes>.<ext>".
func TimestampedFilename(prefix string, now time.Time, ext string, suffixes ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("_")
	b.WriteString(now.Format("2006-01-02"))
	b.WriteString("_")
	b.WriteString(now.Format("15-04-05"))
	for _, suffix := range suffixes {
		if suffix == "" {
			continue
		}
		b.WriteString("_")
		b.WriteString(strings.TrimPrefix(suffix, "_"))
	}
	b.WriteString(".")
	b.WriteString(strings.TrimPrefix(ext, "."))
	return b.String()
}
