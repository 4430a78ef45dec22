// Package wordpress pulls meeting records from the WordPress REST API.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meetingsync/internal/domain"
	"meetingsync/internal/ports"
)

const (
	meetingsEndpoint = "/wp-json/wp/v2/kokoukset"
	perPage          = 100
	userAgent        = "meetingsync/1.0"
)

// Client reads the full meeting list page by page.
type Client struct {
	baseURL string
	perPage int
	client  *http.Client
}

var _ ports.MeetingSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 40s timeout default.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 40 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		perPage: perPage,
		client:  client,
	}
}

// FetchAll walks the paginated endpoint until an empty page. WordPress
// answers 400 (or 404 on some builds) for a page past the last one; both end
// the walk. Any other HTTP error aborts the run.
func (c *Client) FetchAll(ctx context.Context) ([]domain.SourceRecord, error) {
	var records []domain.SourceRecord
	page := 1
	for {
		items, end, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if end || len(items) == 0 {
			break
		}
		for _, item := range items {
			records = append(records, item.toRecord())
		}
		page++
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]wpMeeting, bool, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage))
	query.Set("page", strconv.Itoa(page))
	pageURL := c.baseURL + meetingsEndpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("wordpress returned %s", resp.Status)
	}

	var items []wpMeeting
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, false, fmt.Errorf("decode page: %w", err)
	}
	return items, false, nil
}

// wpMeeting mirrors the custom-post JSON shape. Several fields arrive as
// strings on some records and numbers or arrays on others, hence the flexible
// types.
type wpMeeting struct {
	ID         int          `json:"id"`
	Slug       string       `json:"slug"`
	Title      renderedText `json:"title"`
	Weekday    flexString   `json:"weekday"`
	StartTime  flexString   `json:"alkamisaika"`
	Duration   flexString   `json:"kesto"`
	Street     flexString   `json:"katuosoite"`
	PostalCode flexString   `json:"postinumero"`
	City       flexString   `json:"kaupunki"`
	Country    flexString   `json:"maa"`
	MapLink    flexString   `json:"karttalinkki"`
	Notes      flexString   `json:"lisatiedot"`
	Modalities tokenList    `json:"rel_kokousmuodot"`
	Languages  tokenList    `json:"rel_kokouskielet"`
}

func (m wpMeeting) toRecord() domain.SourceRecord {
	return domain.SourceRecord{
		ID:              m.ID,
		Title:           m.Title.Rendered,
		Slug:            m.Slug,
		Weekday:         strings.TrimSpace(string(m.Weekday)),
		StartTime:       string(m.StartTime),
		DurationMinutes: string(m.Duration),
		Street:          strings.TrimSpace(string(m.Street)),
		PostalCode:      strings.TrimSpace(string(m.PostalCode)),
		City:            strings.TrimSpace(string(m.City)),
		Country:         strings.TrimSpace(string(m.Country)),
		MapLink:         strings.TrimSpace(string(m.MapLink)),
		Notes:           string(m.Notes),
		ModalityTags:    m.Modalities,
		LanguageTags:    m.Languages,
	}
}

type renderedText struct {
	Rendered string `json:"rendered"`
}

// flexString accepts a JSON string, number, bool, or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "false" {
		*f = ""
		return nil
	}
	*f = flexString(trimmed)
	return nil
}

// tokenList accepts a JSON array of strings or a single string.
type tokenList []string

func (l *tokenList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*l = nil
		} else {
			*l = []string{s}
		}
		return nil
	}
	*l = nil
	return nil
}
