package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meetingsync/internal/domain"
)

func testFormats() []domain.Format {
	return []domain.Format{
		{ID: 10, Translations: []domain.FormatTranslation{
			{Key: "FIN", Language: "en"},
			{Key: "FIN", Language: "fi"},
		}},
		{ID: 11, Translations: []domain.FormatTranslation{{Key: "ENG"}}},
		{ID: 12, Translations: []domain.FormatTranslation{{Key: "O"}}},
		{ID: 13, Translations: []domain.FormatTranslation{{Key: "VM"}}},
		{ID: 14, Translations: []domain.FormatTranslation{{Key: " ME "}}},
	}
}

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	ix := BuildIndex(testFormats())

	require.Equal(t, 10, ix.byKey["FIN"])
	require.Equal(t, 11, ix.byKey["ENG"])
	require.Equal(t, 14, ix.byKey["ME"], "translation keys are trimmed")
	require.True(t, ix.valid[12])
	require.False(t, ix.valid[99])
}

func TestResolveOrderAndDedup(t *testing.T) {
	t.Parallel()

	ix := BuildIndex(testFormats())
	res := ix.Resolve([]string{"Avoin", "suomi", "Avoin", "englanti"}, false)

	require.Equal(t, []int{12, 10, 11}, res.IDs, "first-seen order, duplicates dropped")
	require.Empty(t, res.MissingKeys)
	require.Empty(t, res.RemovedIDs)
}

func TestResolveVirtualMarkerFirst(t *testing.T) {
	t.Parallel()

	ix := BuildIndex(testFormats())
	res := ix.Resolve([]string{"suomi"}, true)

	require.Equal(t, []int{13, 10}, res.IDs)
}

func TestResolveMissingKeysReported(t *testing.T) {
	t.Parallel()

	ix := BuildIndex(testFormats())
	res := ix.Resolve([]string{"Puhujakokous", "suomi"}, false)

	require.Equal(t, []int{10}, res.IDs)
	require.Equal(t, []string{"So"}, res.MissingKeys, "unresolved keys are reported, not dropped")
}

func TestResolveStaleIDFiltered(t *testing.T) {
	t.Parallel()

	// An index whose ENG mapping points at an id the registry no longer
	// lists. Without a valid FIN fallback the record ends up with nothing.
	ix := &Index{
		byKey: map[string]int{"ENG": 42},
		valid: map[int]bool{},
	}
	res := ix.Resolve([]string{"englanti"}, false)

	require.Empty(t, res.IDs)
	require.Equal(t, []int{42}, res.RemovedIDs)
}

func TestResolveFallbackToDefaultLanguage(t *testing.T) {
	t.Parallel()

	ix := BuildIndex(testFormats())
	res := ix.Resolve([]string{"tuntematon"}, false)

	require.Equal(t, []int{10}, res.IDs, "FIN fallback applies when nothing resolves")
}

func TestResolveNothing(t *testing.T) {
	t.Parallel()

	ix := BuildIndex([]domain.Format{{ID: 11, Translations: []domain.FormatTranslation{{Key: "ENG"}}}})
	res := ix.Resolve([]string{"tuntematon"}, false)

	require.Empty(t, res.IDs, "no fallback without a valid FIN id")
}
