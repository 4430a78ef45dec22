package bmlt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetingsync/internal/config"
	"meetingsync/internal/domain"
)

func testClient(serverURL string, server *httptest.Server) *Client {
	return NewClient(config.RegistryConfig{
		BaseURL:  serverURL,
		Username: "admin",
		Password: "secret",
	}, server.Client())
}

func TestAuthenticateTokenVariants(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"token": "tok-1"}`,
		`{"access_token": "tok-1"}`,
		`{"data": {"token": "tok-1"}}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/auth/token" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			_, _ = w.Write([]byte(body))
		}))

		c := testClient(server.URL, server)
		if err := c.Authenticate(context.Background()); err != nil {
			t.Fatalf("Authenticate with %s: %v", body, err)
		}
		if c.token != "tok-1" {
			t.Fatalf("token not captured from %s", body)
		}
		server.Close()
	}
}

func TestAuthenticateFollowsRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/main_server/api/v1/auth/token", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/main_server/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token": "tok-redirected"}`))
	})

	c := testClient(server.URL, server)
	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if c.token != "tok-redirected" {
		t.Fatalf("token = %q", c.token)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := testClient(server.URL, server)
	if err := c.Authenticate(context.Background()); err == nil {
		t.Fatalf("expected error for tokenless response")
	}
}

func TestFormatsRejectsNonArray(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "maintenance"}`))
	}))
	defer server.Close()

	c := testClient(server.URL, server)
	if _, err := c.Formats(context.Background()); err == nil {
		t.Fatalf("expected error for non-array formats response")
	}
}

func TestFormatsDecodesTranslations(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"id": 10, "translations": [{"key": "FIN", "name": "Finnish", "language": "en"}]},
			{"id": 13, "translations": [{"key": "VM", "name": "Virtual Meeting", "language": "en"}]}
		]`))
	}))
	defer server.Close()

	c := testClient(server.URL, server)
	c.token = "tok"

	formats, err := c.Formats(context.Background())
	if err != nil {
		t.Fatalf("Formats: %v", err)
	}
	if len(formats) != 2 || formats[0].ID != 10 || formats[0].Translations[0].Key != "FIN" {
		t.Fatalf("unexpected formats: %+v", formats)
	}
}

func TestCreateMeetingRejectionIsRegistryError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m domain.Meeting
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "The duration field is required."}`))
	}))
	defer server.Close()

	c := testClient(server.URL, server)
	err := c.CreateMeeting(context.Background(), domain.Meeting{Name: "Testiryhmä"})

	var regErr *domain.RegistryError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected RegistryError, got %v", err)
	}
	if regErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", regErr.StatusCode)
	}
	if regErr.Body == "" {
		t.Fatalf("response body not captured")
	}
}

func TestCreateMeetingSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 501}`))
	}))
	defer server.Close()

	c := testClient(server.URL, server)
	if err := c.CreateMeeting(context.Background(), domain.Meeting{Name: "Testiryhmä"}); err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
}
