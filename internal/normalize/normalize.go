// Package normalize converts raw WordPress field values into the shapes the
// registry validates: plain text, HH:MM times, 0-6 weekday indexes.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CommentsMax is the registry's comment field limit, counted in characters.
const CommentsMax = 512

const defaultDurationMinutes = 90

var (
	breakExpr = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagExpr   = regexp.MustCompile(`<[^>]*>`)
)

var weekdayIndex = map[string]int{
	"Sunnuntai":   0,
	"Maanantai":   1,
	"Tiistai":     2,
	"Keskiviikko": 3,
	"Torstai":     4,
	"Perjantai":   5,
	"Lauantai":    6,
}

// MapWeekday resolves a Finnish weekday name to the registry's 0-6 index.
func MapWeekday(name string) (int, bool) {
	day, ok := weekdayIndex[strings.TrimSpace(name)]
	return day, ok
}

// StripMarkup turns HTML-ish content into trimmed plain text: break tags
// become newlines, remaining markup is dropped, blank lines are collapsed.
// Empty input yields empty output.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}

	txt := breakExpr.ReplaceAllString(s, "\n")
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(txt)); err == nil {
		txt = doc.Text()
	} else {
		txt = tagExpr.ReplaceAllString(txt, "")
	}

	txt = strings.ReplaceAll(txt, "\r\n", "\n")
	txt = strings.ReplaceAll(txt, "\r", "\n")

	lines := make([]string, 0, 8)
	for _, line := range strings.Split(txt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// TruncateComments enforces the registry comment limit. Counts characters,
// not bytes, to match the registry's own enforcement; over-long input is cut
// to 511 characters plus a single ellipsis.
func TruncateComments(s string) string {
	runes := []rune(s)
	if len(runes) <= CommentsMax {
		return s
	}
	return string(runes[:CommentsMax-1]) + "…"
}

// NormalizeTime coerces source start times into HH:MM. A bare hour gets
// ":00" appended; dots are accepted as separators. Unparseable values are
// returned with dots swapped for colons so the caller can reject them.
func NormalizeTime(val string) string {
	if val == "" {
		return ""
	}
	s := strings.ReplaceAll(strings.TrimSpace(val), ".", ":")
	parts := strings.Split(s, ":")

	if len(parts) == 1 {
		if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 {
			return fmt.Sprintf("%02d:00", h)
		}
		return s
	}

	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || m < 0 {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// DurationHM converts a duration-in-minutes string to HH:MM. Non-numeric or
// non-positive values fall back to the 90-minute default.
func DurationHM(minutes string) string {
	mins, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil || mins <= 0 {
		mins = defaultDurationMinutes
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// SplitTokens splits tag values on the separators the source uses
// interchangeably: comma, semicolon, ampersand, and the Finnish "ja"
// conjunction. Empty tokens are dropped.
func SplitTokens(values []string) []string {
	var out []string
	for _, v := range values {
		s := v
		for _, sep := range []string{" ja ", " & ", ";"} {
			s = strings.ReplaceAll(s, sep, ",")
		}
		for _, tok := range strings.Split(s, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}
