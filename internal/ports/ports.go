package ports

import (
	"context"
	"time"

	"meetingsync/internal/domain"
)

// MeetingSource pulls the full set of meeting records from the content API.
type MeetingSource interface {
	FetchAll(ctx context.Context) ([]domain.SourceRecord, error)
}

// Registry is the meeting-registry API. Authenticate must succeed before the
// other calls; Authenticate and Formats errors are fatal to a run while
// CreateMeeting errors are per-record failures.
type Registry interface {
	Authenticate(ctx context.Context) error
	Formats(ctx context.Context) ([]domain.Format, error)
	CreateMeeting(ctx context.Context, m domain.Meeting) error
}

// Geocoder looks up a single coordinate pair for an address query.
// found=false with a nil error means the service had no result.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (lat, lon float64, found bool, err error)
}

// StateStore persists the geocode cache and run state across runs. Loads fall
// back to empty defaults when nothing usable is on disk; saves must be atomic.
type StateStore interface {
	LoadGeocodeCache() (domain.GeocodeCache, error)
	SaveGeocodeCache(cache domain.GeocodeCache) error
	LoadState() (domain.RunState, error)
	SaveState(state domain.RunState) error
}

// Scheduler controls when sync runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
