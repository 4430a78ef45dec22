package domain

// SourceRecord is a raw meeting entry as published by the WordPress content
// API. Field names mirror the Finnish custom-post fields; the record is never
// mutated after the source client builds it.
type SourceRecord struct {
	ID              int
	Title           string
	Slug            string
	Weekday         string
	StartTime       string
	DurationMinutes string
	Street          string
	PostalCode      string
	City            string
	Country         string
	MapLink         string
	Notes           string
	ModalityTags    []string
	LanguageTags    []string
}

// VenueType follows the BMLT Admin API v4 integer encoding.
type VenueType int

const (
	VenueInPerson VenueType = 1
	VenueVirtual  VenueType = 2
	VenueHybrid   VenueType = 3
)

// Meeting is the normalized publish payload for the registry. Location fields
// are sent under both camelCase and snake_case names to match mixed validator
// builds on the registry side. Constructed fresh each run and never mutated.
type Meeting struct {
	ServiceBodyID int       `json:"serviceBodyId"`
	Name          string    `json:"name"`
	Day           int       `json:"day"`
	StartTime     string    `json:"startTime"`
	Duration      string    `json:"duration"`
	Published     bool      `json:"published"`
	VenueType     VenueType `json:"venueType"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	FormatIDs     []int     `json:"formatIds"`

	LocationStreet     string `json:"locationStreet"`
	LocationCity       string `json:"locationCity"`
	LocationPostalCode string `json:"locationPostalCode"`
	LocationCountry    string `json:"locationCountry"`
	LocationURL        string `json:"locationUrl"`
	LocationProvince   string `json:"locationProvince"`

	LocationStreetSnake       string `json:"location_street"`
	LocationMunicipalitySnake string `json:"location_municipality"`
	LocationPostalCodeSnake   string `json:"location_postal_code"`
	LocationCountrySnake      string `json:"location_country"`
	LocationURLSnake          string `json:"location_url"`
	LocationProvinceSnake     string `json:"location_province"`

	VirtualMeetingLink      string `json:"virtualMeetingLink"`
	VirtualMeetingLinkSnake string `json:"virtual_meeting_link"`
	PhoneMeetingNumber      string `json:"phoneMeetingNumber"`
	PhoneMeetingNumberSnake string `json:"phone_meeting_number"`

	Comments   string `json:"comments"`
	ExternalID string `json:"externalId"`
}

// Format is one entry of the registry's current format vocabulary.
type Format struct {
	ID           int                 `json:"id"`
	Translations []FormatTranslation `json:"translations"`
}

// FormatTranslation carries a per-locale vocabulary key for a format.
type FormatTranslation struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// GeocodeCache maps a cleaned address query to a [lat, lon] pair. Entries are
// append-only across runs; nothing ever expires them.
type GeocodeCache map[string][2]float64

// RunState is the durable per-run bookkeeping, including the fingerprint map
// that drives change detection. Fingerprints for source records that have
// disappeared are kept forever.
type RunState struct {
	LastRun        string            `json:"last_run"`
	Created        int               `json:"created"`
	Skipped        int               `json:"skipped"`
	Failed         int               `json:"failed"`
	SkippedReasons map[string]int    `json:"skipped_reasons"`
	FailedReasons  map[string]int    `json:"failed_reasons"`
	Fingerprints   map[string]string `json:"fingerprints"`
}

// Per-record skip reasons.
const (
	ReasonMissingDayOrTime      = "missing_day_or_time"
	ReasonVirtualMissingContact = "virtual_missing_link_or_phone"
	ReasonInPersonMissingAddr   = "in_person_missing_address"
	ReasonNoValidFormats        = "no_valid_formats"
	ReasonGeocodeFailed         = "geocode_failed"
	ReasonGeocodeError          = "geocode_error"
	ReasonUnchanged             = "unchanged"
)

// OutcomeStatus tags the terminal state of one record in one run.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the per-record pipeline result. Reason carries the skip reason
// for skips and the failure histogram key (HTTP status or "exception") for
// failures; Detail is free text for logging.
type Outcome struct {
	Status OutcomeStatus
	Reason string
	Detail string
}
