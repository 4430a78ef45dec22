// Package geocode turns postal addresses into coordinates, backed by a
// persistent query cache so repeated addresses never hit the network twice.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"meetingsync/internal/domain"
	"meetingsync/internal/ports"
)

// ErrNoResult means the geocoding service answered but found nothing for the
// query.
var ErrNoResult = errors.New("geocode: no result")

var (
	parenExpr = regexp.MustCompile(`\([^)]*\)`)
	spaceExpr = regexp.MustCompile(`\s+`)
)

// Coords is a resolved coordinate pair. Cached reports whether the pair came
// from the cache rather than a live lookup.
type Coords struct {
	Lat    float64
	Lon    float64
	Cached bool
}

// Resolver combines the external geocoder with the append-only cache and the
// configured fallback policy. The cache map is shared with the caller, which
// persists it at end of run.
type Resolver struct {
	geocoder      ports.Geocoder
	cache         domain.GeocodeCache
	defaultLat    float64
	defaultLon    float64
	allowFallback bool
}

// NewResolver wires the resolver. A nil cache gets replaced by an empty one.
func NewResolver(g ports.Geocoder, cache domain.GeocodeCache, defaultLat, defaultLon float64, allowFallback bool) *Resolver {
	if cache == nil {
		cache = domain.GeocodeCache{}
	}
	return &Resolver{
		geocoder:      g,
		cache:         cache,
		defaultLat:    defaultLat,
		defaultLon:    defaultLon,
		allowFallback: allowFallback,
	}
}

// Cache exposes the (possibly grown) cache for persistence.
func (r *Resolver) Cache() domain.GeocodeCache {
	return r.cache
}

// Resolve geocodes the cleaned address. An empty query returns the default
// coordinates without caching. A cache hit returns immediately. A miss goes
// to the live service; its result is cached. When the service has no result
// or errors, the configured fallback either substitutes the default
// coordinates or surfaces the error so the record can be skipped.
func (r *Resolver) Resolve(ctx context.Context, street, postal, city, country string) (Coords, error) {
	query := CleanQuery(street, postal, city, country)
	if query == "" {
		return Coords{Lat: r.defaultLat, Lon: r.defaultLon}, nil
	}

	if pair, ok := r.cache[query]; ok {
		return Coords{Lat: pair[0], Lon: pair[1], Cached: true}, nil
	}

	lat, lon, found, err := r.geocoder.Lookup(ctx, query)
	if err != nil {
		if r.allowFallback {
			return Coords{Lat: r.defaultLat, Lon: r.defaultLon}, nil
		}
		return Coords{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if !found {
		if r.allowFallback {
			return Coords{Lat: r.defaultLat, Lon: r.defaultLon}, nil
		}
		return Coords{}, fmt.Errorf("geocode %q: %w", query, ErrNoResult)
	}

	r.cache[query] = [2]float64{lat, lon}
	return Coords{Lat: lat, Lon: lon}, nil
}

// CleanQuery builds the geocoding query string: each component loses
// parenthetical asides, slashes become spaces, whitespace collapses, and the
// non-empty parts join with ", ".
func CleanQuery(street, postal, city, country string) string {
	parts := make([]string, 0, 4)
	for _, raw := range []string{street, postal, city, country} {
		if c := cleanComponent(raw); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

func cleanComponent(s string) string {
	s = strings.TrimSpace(s)
	s = parenExpr.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "/", " ")
	s = spaceExpr.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
