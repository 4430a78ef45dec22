package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func quiet(c *Client) *Client {
	c.delay = 0
	c.sleep = func(time.Duration) {}
	return c
}

func TestLookupParsesFirstResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "Mannerheimintie 1, Helsinki" {
			t.Errorf("unexpected query %q", q)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit not set")
		}
		_, _ = w.Write([]byte(`[{"lat": "60.1712", "lon": "24.9415"}]`))
	}))
	defer server.Close()

	c := quiet(NewClient(server.Client()))
	c.endpoint = server.URL

	lat, lon, found, err := c.Lookup(context.Background(), "Mannerheimintie 1, Helsinki")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatalf("expected a result")
	}
	if lat != 60.1712 || lon != 24.9415 {
		t.Fatalf("coords = %v, %v", lat, lon)
	}
}

func TestLookupNoResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := quiet(NewClient(server.Client()))
	c.endpoint = server.URL

	_, _, found, err := c.Lookup(context.Background(), "Olematon katu 99")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Fatalf("expected no result")
	}
}

func TestLookupDelayRunsOnEveryPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	slept := 0
	c := NewClient(server.Client())
	c.endpoint = server.URL
	c.sleep = func(time.Duration) { slept++ }

	if _, _, _, err := c.Lookup(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on HTTP 503")
	}
	if slept != 1 {
		t.Fatalf("polite delay skipped on error path")
	}
}
