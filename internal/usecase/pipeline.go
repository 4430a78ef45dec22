package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"meetingsync/internal/classify"
	"meetingsync/internal/config"
	"meetingsync/internal/domain"
	"meetingsync/internal/fingerprint"
	"meetingsync/internal/format"
	"meetingsync/internal/geocode"
	"meetingsync/internal/metrics"
	"meetingsync/internal/normalize"
	"meetingsync/internal/ports"
)

const defaultCountry = "Finland"

const progressEvery = 25

// PipelineDeps wires all driven adapters into the sync pipeline. Metrics and
// Logger may be nil.
type PipelineDeps struct {
	Source   ports.MeetingSource
	Registry ports.Registry
	Geocoder ports.Geocoder
	Store    ports.StateStore
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Config   config.Config
}

// Pipeline implements the one-way sync: fetch every source record, transform
// each one into a registry payload, and publish the ones whose content
// changed since the last successful publish. Records are processed strictly
// one at a time.
type Pipeline struct {
	source   ports.MeetingSource
	registry ports.Registry
	geocoder ports.Geocoder
	store    ports.StateStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      config.Config
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   deps.Source,
		registry: deps.Registry,
		geocoder: deps.Geocoder,
		store:    deps.Store,
		metrics:  deps.Metrics,
		logger:   logger,
		cfg:      deps.Config,
	}
}

// Run executes one full sync. Errors returned here are fatal: source paging
// failures, authentication failures, and a malformed format list. Per-record
// skips and publish failures are tallied and logged, never returned.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	records, err := p.source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch source records: %w", err)
	}
	p.logger.Info("fetched source records", "count", len(records))

	if err := p.registry.Authenticate(ctx); err != nil {
		return fmt.Errorf("registry auth: %w", err)
	}

	formats, err := p.registry.Formats(ctx)
	if err != nil {
		return fmt.Errorf("load formats: %w", err)
	}
	index := format.BuildIndex(formats)
	p.logger.Info("loaded format vocabulary", "formats", len(formats))

	cache, _ := p.store.LoadGeocodeCache()
	state, _ := p.store.LoadState()
	resolver := geocode.NewResolver(
		p.geocoder, cache,
		p.cfg.Geocoding.DefaultLat, p.cfg.Geocoding.DefaultLon,
		p.cfg.Geocoding.AllowFallbackCoords,
	)

	summary := domain.RunState{
		SkippedReasons: map[string]int{},
		FailedReasons:  map[string]int{},
		Fingerprints:   state.Fingerprints,
	}

	for _, rec := range records {
		outcome := p.processRecord(ctx, rec, index, resolver, summary.Fingerprints)
		switch outcome.Status {
		case domain.OutcomeCreated:
			summary.Created++
			p.countCreated()
			if outcome.Detail != "" {
				p.logger.Info("created with notes", "wp_id", rec.ID, "detail", outcome.Detail)
			}
			if summary.Created%progressEvery == 0 {
				p.logger.Info("progress", "created", summary.Created)
			}
		case domain.OutcomeSkipped:
			summary.Skipped++
			summary.SkippedReasons[outcome.Reason]++
			p.countSkipped(outcome.Reason)
			if outcome.Reason != domain.ReasonUnchanged {
				p.logger.Info("skip record", "wp_id", rec.ID, "reason", outcome.Reason, "detail", outcome.Detail)
			}
		case domain.OutcomeFailed:
			summary.Failed++
			summary.FailedReasons[outcome.Reason]++
			p.countFailed(outcome.Reason)
			p.logger.Error("publish failed", "wp_id", rec.ID, "reason", outcome.Reason, "detail", outcome.Detail)
		}
	}

	if err := p.store.SaveGeocodeCache(resolver.Cache()); err != nil {
		return fmt.Errorf("persist geocode cache: %w", err)
	}
	summary.LastRun = time.Now().UTC().Format("2006-01-02T15:04:05Z")
	if err := p.store.SaveState(summary); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}
	p.logger.Info("run complete",
		"created", summary.Created,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"skip_reasons", summary.SkippedReasons,
		"fail_reasons", summary.FailedReasons,
	)
	return nil
}

// processRecord is the per-record state machine. Every exit is terminal for
// this record in this run; nothing retries internally.
func (p *Pipeline) processRecord(
	ctx context.Context,
	rec domain.SourceRecord,
	index *format.Index,
	resolver *geocode.Resolver,
	fingerprints map[string]string,
) domain.Outcome {
	day, dayOK := normalize.MapWeekday(rec.Weekday)
	startTime := normalize.NormalizeTime(rec.StartTime)
	if !dayOK || startTime == "" {
		return skip(domain.ReasonMissingDayOrTime, "")
	}
	duration := normalize.DurationHM(rec.DurationMinutes)

	country := rec.Country
	if country == "" {
		country = defaultCountry
	}

	plainNotes := normalize.StripMarkup(rec.Notes)
	comments := normalize.TruncateComments(plainNotes)

	virtual := classify.IsVirtual(rec)
	var virtualLink, phone string
	if virtual {
		virtualLink = classify.VirtualLink(rec, plainNotes)
		phone = classify.PhoneNumber(rec.Notes)
		if virtualLink == "" && phone == "" {
			return skip(domain.ReasonVirtualMissingContact, "")
		}
	} else if rec.Street == "" || (rec.City == "" && rec.PostalCode == "") {
		return skip(domain.ReasonInPersonMissingAddr, "")
	}

	venueType := classify.VenueType(rec, virtual)

	tokens := normalize.SplitTokens(append(append([]string{}, rec.ModalityTags...), rec.LanguageTags...))
	res := index.Resolve(tokens, virtual)
	if len(res.IDs) == 0 {
		return skip(domain.ReasonNoValidFormats,
			fmt.Sprintf("missing_keys=%v removed_ids=%v", res.MissingKeys, res.RemovedIDs))
	}

	lat := p.cfg.Geocoding.DefaultLat
	lon := p.cfg.Geocoding.DefaultLon
	if venueType == domain.VenueInPerson || venueType == domain.VenueHybrid {
		coords, err := resolver.Resolve(ctx, rec.Street, rec.PostalCode, rec.City, country)
		if err != nil {
			reason := domain.ReasonGeocodeError
			if errors.Is(err, geocode.ErrNoResult) {
				reason = domain.ReasonGeocodeFailed
			}
			return skip(reason, err.Error())
		}
		lat, lon = coords.Lat, coords.Lon
		p.countGeocode(coords.Cached)
	}

	name := rec.Title
	if name == "" {
		name = rec.Slug
	}
	if name == "" {
		name = fmt.Sprintf("WP-%d", rec.ID)
	}

	province := p.cfg.Registry.DefaultProvince
	meeting := domain.Meeting{
		ServiceBodyID: p.cfg.Registry.ServiceBodyID,
		Name:          normalize.StripMarkup(name),
		Day:           day,
		StartTime:     startTime,
		Duration:      duration,
		Published:     true,
		VenueType:     venueType,
		Latitude:      lat,
		Longitude:     lon,
		FormatIDs:     res.IDs,

		LocationStreet:     rec.Street,
		LocationCity:       rec.City,
		LocationPostalCode: rec.PostalCode,
		LocationCountry:    country,
		LocationURL:        rec.MapLink,
		LocationProvince:   province,

		LocationStreetSnake:       rec.Street,
		LocationMunicipalitySnake: rec.City,
		LocationPostalCodeSnake:   rec.PostalCode,
		LocationCountrySnake:      country,
		LocationURLSnake:          rec.MapLink,
		LocationProvinceSnake:     province,

		VirtualMeetingLink:      virtualLink,
		VirtualMeetingLinkSnake: virtualLink,
		PhoneMeetingNumber:      phone,
		PhoneMeetingNumberSnake: phone,

		Comments:   comments,
		ExternalID: fmt.Sprintf("wp:%d", rec.ID),
	}

	fp, err := fingerprint.Compute(meeting)
	if err != nil {
		return domain.Outcome{Status: domain.OutcomeFailed, Reason: "exception", Detail: err.Error()}
	}

	key := strconv.Itoa(rec.ID)
	if fingerprints[key] == fp {
		return skip(domain.ReasonUnchanged, "")
	}

	if err := p.registry.CreateMeeting(ctx, meeting); err != nil {
		reason := "exception"
		var regErr *domain.RegistryError
		if errors.As(err, &regErr) {
			reason = strconv.Itoa(regErr.StatusCode)
		}
		return domain.Outcome{Status: domain.OutcomeFailed, Reason: reason, Detail: err.Error()}
	}
	fingerprints[key] = fp

	var detail string
	if len(res.MissingKeys) > 0 || len(res.RemovedIDs) > 0 {
		detail = fmt.Sprintf("missing_keys=%v removed_ids=%v", res.MissingKeys, res.RemovedIDs)
	}
	return domain.Outcome{Status: domain.OutcomeCreated, Detail: detail}
}

func skip(reason, detail string) domain.Outcome {
	return domain.Outcome{Status: domain.OutcomeSkipped, Reason: reason, Detail: detail}
}

func (p *Pipeline) countCreated() {
	if p.metrics != nil {
		p.metrics.RecordsCreated.Inc()
	}
}

func (p *Pipeline) countSkipped(reason string) {
	if p.metrics != nil {
		p.metrics.RecordsSkipped.WithLabelValues(reason).Inc()
	}
}

func (p *Pipeline) countFailed(reason string) {
	if p.metrics != nil {
		p.metrics.RecordsFailed.WithLabelValues(reason).Inc()
	}
}

func (p *Pipeline) countGeocode(cached bool) {
	if p.metrics == nil {
		return
	}
	result := "live"
	if cached {
		result = "cache_hit"
	}
	p.metrics.GeocodeLookups.WithLabelValues(result).Inc()
}
