package geocode

import (
	"context"
	"errors"
	"testing"

	"meetingsync/internal/domain"
)

type fakeGeocoder struct {
	calls   int
	lat     float64
	lon     float64
	found   bool
	err     error
	queries []string
}

func (f *fakeGeocoder) Lookup(_ context.Context, query string) (float64, float64, bool, error) {
	f.calls++
	f.queries = append(f.queries, query)
	return f.lat, f.lon, f.found, f.err
}

func TestCleanQuery(t *testing.T) {
	t.Parallel()

	cases := []struct {
		street, postal, city, country string
		want                          string
	}{
		{"Mannerheimintie 1", "00100", "Helsinki", "Finland", "Mannerheimintie 1, 00100, Helsinki, Finland"},
		{"Mannerheimintie 1 (sisäpiha)", "", "Helsinki", "", "Mannerheimintie 1, Helsinki"},
		{"Iso/Roobertinkatu  3", "", "Helsinki", "", "Iso Roobertinkatu 3, Helsinki"},
		{"", "", "", "", ""},
	}
	for _, tc := range cases {
		got := CleanQuery(tc.street, tc.postal, tc.city, tc.country)
		if got != tc.want {
			t.Fatalf("CleanQuery = %q, want %q", got, tc.want)
		}
	}
}

func TestResolveCachesWithinRun(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{lat: 60.17, lon: 24.94, found: true}
	r := NewResolver(g, domain.GeocodeCache{}, 60.1699, 24.9384, false)

	first, err := r.Resolve(context.Background(), "Mannerheimintie 1", "", "Helsinki", "Finland")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Cached {
		t.Fatalf("first lookup should not be a cache hit")
	}

	second, err := r.Resolve(context.Background(), "Mannerheimintie 1", "", "Helsinki", "Finland")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second lookup should come from cache")
	}
	if g.calls != 1 {
		t.Fatalf("geocoder called %d times, want 1", g.calls)
	}
	if second.Lat != 60.17 || second.Lon != 24.94 {
		t.Fatalf("cached coords %v", second)
	}
}

func TestResolveSharedCacheAcrossRecords(t *testing.T) {
	t.Parallel()

	cache := domain.GeocodeCache{"Mannerheimintie 1, Helsinki": {60.17, 24.94}}
	g := &fakeGeocoder{}
	r := NewResolver(g, cache, 0, 0, false)

	got, err := r.Resolve(context.Background(), "Mannerheimintie 1 ", "", " Helsinki", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if g.calls != 0 {
		t.Fatalf("pre-seeded cache entry still hit the network")
	}
	if !got.Cached {
		t.Fatalf("expected cache hit")
	}
}

func TestResolveNoResult(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{found: false}
	r := NewResolver(g, nil, 60.1699, 24.9384, false)

	_, err := r.Resolve(context.Background(), "Olematon katu 99", "", "Helsinki", "")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if len(r.Cache()) != 0 {
		t.Fatalf("failed lookup must not be cached")
	}
}

func TestResolveFallbackCoords(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{err: errors.New("timeout")}
	r := NewResolver(g, nil, 60.1699, 24.9384, true)

	got, err := r.Resolve(context.Background(), "Mannerheimintie 1", "", "Helsinki", "")
	if err != nil {
		t.Fatalf("fallback should swallow the error, got %v", err)
	}
	if got.Lat != 60.1699 || got.Lon != 24.9384 {
		t.Fatalf("expected default coords, got %v", got)
	}
}

func TestResolveEmptyQueryUsesDefaults(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{}
	r := NewResolver(g, nil, 60.1699, 24.9384, false)

	got, err := r.Resolve(context.Background(), "", "", "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if g.calls != 0 {
		t.Fatalf("empty query must not reach the geocoder")
	}
	if got.Lat != 60.1699 || got.Lon != 24.9384 {
		t.Fatalf("expected default coords, got %v", got)
	}
	if len(r.Cache()) != 0 {
		t.Fatalf("empty query must not be cached")
	}
}
