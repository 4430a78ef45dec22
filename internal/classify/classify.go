// Package classify decides the venue modality of a source record and extracts
// virtual contact details. The virtual detection is a heuristic over free-form
// address fields, not a declared source attribute; the rule list below is the
// whole contract.
package classify

import (
	"regexp"
	"strings"

	"meetingsync/internal/domain"
	"meetingsync/internal/normalize"
)

// virtualRules is the fixed heuristic: a record is virtual when any listed
// field contains its needle, case-insensitively.
var virtualRules = []struct {
	field  func(domain.SourceRecord) string
	needle string
}{
	{func(r domain.SourceRecord) string { return r.City }, "internet"},
	{func(r domain.SourceRecord) string { return r.Street }, "zoom"},
	{func(r domain.SourceRecord) string { return r.Street }, "teams"},
	{func(r domain.SourceRecord) string { return r.MapLink }, "zoom"},
	{func(r domain.SourceRecord) string { return r.MapLink }, "teams"},
}

const hybridTag = "Hybridi"

var (
	urlExpr          = regexp.MustCompile(`https?://\S+`)
	compactPhoneExpr = regexp.MustCompile(`\+\d{6,15}|\b0\d{6,15}\b`)
	loosePhoneExpr   = regexp.MustCompile(`\+\d[\d\s\-]{6,20}|\b0\d[\d\s\-]{6,20}`)
	nonPhoneExpr     = regexp.MustCompile(`[^\d+]`)
)

// IsVirtual reports whether the record looks like an online meeting.
func IsVirtual(rec domain.SourceRecord) bool {
	for _, rule := range virtualRules {
		if strings.Contains(strings.ToLower(rule.field(rec)), rule.needle) {
			return true
		}
	}
	return false
}

// VenueType derives the registry venue encoding. A hybrid tag only yields
// hybrid when the record carries a usable street address; without one the
// meeting can only be attended online.
func VenueType(rec domain.SourceRecord, isVirtual bool) domain.VenueType {
	if hasHybridTag(rec) {
		if rec.Street != "" && (rec.City != "" || rec.PostalCode != "") {
			return domain.VenueHybrid
		}
		return domain.VenueVirtual
	}
	if isVirtual {
		return domain.VenueVirtual
	}
	return domain.VenueInPerson
}

func hasHybridTag(rec domain.SourceRecord) bool {
	for _, tag := range rec.ModalityTags {
		if strings.Contains(tag, hybridTag) {
			return true
		}
	}
	return false
}

// VirtualLink picks the joining URL: the map link when it is an absolute
// http(s) URL, otherwise the first URL found in the plain-text notes.
func VirtualLink(rec domain.SourceRecord, plainNotes string) string {
	if strings.HasPrefix(rec.MapLink, "http://") || strings.HasPrefix(rec.MapLink, "https://") {
		return rec.MapLink
	}
	return FirstURL(plainNotes)
}

// FirstURL returns the first http(s) URL in text with trailing punctuation
// trimmed, or "" when none is present.
func FirstURL(text string) string {
	m := urlExpr.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ").,]")
}

// PhoneNumber extracts a dial-in number from the free-text notes. It first
// matches against a compacted copy (spaces and dashes removed) expecting an
// international or leading-zero number of 6-15 digits, then falls back to a
// looser pattern that tolerates embedded separators.
func PhoneNumber(notes string) string {
	if notes == "" {
		return ""
	}
	plain := normalize.StripMarkup(notes)

	compact := strings.NewReplacer(" ", "", "-", "").Replace(plain)
	if m := compactPhoneExpr.FindString(compact); m != "" {
		return m
	}
	if m := loosePhoneExpr.FindString(plain); m != "" {
		return nonPhoneExpr.ReplaceAllString(m, "")
	}
	return ""
}
