// Package format maps source vocabulary tokens to the registry's numeric
// format identifiers.
package format

import (
	"strings"

	"meetingsync/internal/domain"
)

// virtualMarkerKey is prepended for meetings classified as virtual.
const virtualMarkerKey = "VM"

// fallbackKey is the default-language key used when nothing else resolves.
const fallbackKey = "FIN"

// keyByToken is the fixed source-token vocabulary. Keys on the right must
// exist in the registry's format list to resolve.
var keyByToken = map[string]string{
	// languages
	"suomi":    "FIN",
	"englanti": "ENG",
	"venäjä":   "L/R",
	// meeting types
	"Avoin":          "O",
	"Suljettu":       "C",
	"Meditaatio":     "ME",
	"Puhujakokous":   "So",
	"Askeltyökokous": "St",
	"Hybridi":        "HY",
}

// Index is the per-run lookup built from the registry's format list: every
// translation key of every locale points at the format's numeric id, and the
// id set doubles as the validity filter for stale mappings.
type Index struct {
	byKey map[string]int
	valid map[int]bool
}

// BuildIndex flattens the registry format list into an Index. Rebuilt fresh
// every run; never persisted.
func BuildIndex(formats []domain.Format) *Index {
	ix := &Index{
		byKey: make(map[string]int, len(formats)),
		valid: make(map[int]bool, len(formats)),
	}
	for _, f := range formats {
		ix.valid[f.ID] = true
		for _, tr := range f.Translations {
			if key := strings.TrimSpace(tr.Key); key != "" {
				ix.byKey[key] = f.ID
			}
		}
	}
	return ix
}

// Resolution reports resolved ids together with everything that could not be
// honored, so callers can log instead of silently dropping.
type Resolution struct {
	IDs         []int
	MissingKeys []string
	RemovedIDs  []int
}

// Resolve maps already-split source tokens through the vocabulary, dedupes
// preserving first-seen order, prepends the virtual marker when asked, and
// filters the result against the currently valid id set. When nothing
// survives but the default-language key resolves to a valid id, that single
// id is used; an empty result after that means the record has no publishable
// formats.
func (ix *Index) Resolve(tokens []string, virtual bool) Resolution {
	var keys []string
	seen := map[string]bool{}

	if virtual {
		keys = append(keys, virtualMarkerKey)
		seen[virtualMarkerKey] = true
	}
	for _, tok := range tokens {
		key, ok := keyByToken[tok]
		if !ok || seen[key] {
			continue
		}
		keys = append(keys, key)
		seen[key] = true
	}

	var res Resolution
	for _, key := range keys {
		id, ok := ix.byKey[key]
		if !ok {
			res.MissingKeys = append(res.MissingKeys, key)
			continue
		}
		if !ix.valid[id] {
			res.RemovedIDs = append(res.RemovedIDs, id)
			continue
		}
		res.IDs = append(res.IDs, id)
	}

	if len(res.IDs) == 0 {
		if id, ok := ix.byKey[fallbackKey]; ok && ix.valid[id] {
			res.IDs = []int{id}
		}
	}
	return res
}
