// Package nominatim is the geocoding collaborator. Nominatim's usage policy
// limits clients to about one request per second, so every live call is
// followed by a fixed delay regardless of outcome.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"meetingsync/internal/ports"
)

const (
	defaultEndpoint = "https://nominatim.openstreetmap.org/search"
	userAgent       = "meetingsync/1.0 (contact: admin@n/a)"
	politeDelay     = 1100 * time.Millisecond
)

// Client performs single-result address lookups.
type Client struct {
	endpoint string
	client   *http.Client
	delay    time.Duration
	sleep    func(time.Duration)
}

var _ ports.Geocoder = (*Client)(nil)

// NewClient wires the lookup client; a nil HTTP client gets a 40s timeout.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 40 * time.Second}
	}
	return &Client{
		endpoint: defaultEndpoint,
		client:   client,
		delay:    politeDelay,
		sleep:    time.Sleep,
	}
}

// Lookup geocodes the query and returns the first result, or found=false
// when the service has none. The polite delay runs on every path out.
func (c *Client) Lookup(ctx context.Context, query string) (lat, lon float64, found bool, err error) {
	defer c.sleep(c.delay)

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("request geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocoder returned %s", resp.Status)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, false, fmt.Errorf("decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, false, nil
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}
	return lat, lon, true, nil
}
