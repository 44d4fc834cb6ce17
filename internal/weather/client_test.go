package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockRoundTripper is a custom RoundTripper for testing
type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	return resp, nil
}

func newTestClient(handler http.Handler) *Client {
	return &Client{
		BaseURL: "https://api.weatherapi.com/v1",
		APIKey:  "test-key",
		HTTPClient: &http.Client{
			Transport: &mockRoundTripper{handler: handler},
		},
	}
}

const forecastWithAlerts = `{
  "location": {"name": "Mumbai", "region": "Maharashtra", "country": "India"},
  "alerts": {"alert": [
    {
      "headline": "Flood Warning",
      "severity": "Severe",
      "areas": "Mumbai; Pune",
      "event": "Heavy Rain",
      "effective": "2024-07-01T06:00:00+05:30",
      "expires": "2024-07-02T06:00:00+05:30",
      "desc": "Heavy rainfall expected."
    }
  ]}
}`

// TestGetForecastAlerts_RequestParameters verifies the query sent to WeatherAPI
func TestGetForecastAlerts_RequestParameters(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast.json" {
			t.Errorf("expected path /v1/forecast.json, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "test-key" {
			t.Errorf("expected key=test-key, got %s", q.Get("key"))
		}
		if q.Get("q") != "Mumbai" {
			t.Errorf("expected q=Mumbai, got %s", q.Get("q"))
		}
		if q.Get("days") != "1" {
			t.Errorf("expected days=1, got %s", q.Get("days"))
		}
		if q.Get("alerts") != "yes" {
			t.Errorf("expected alerts=yes, got %s", q.Get("alerts"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastWithAlerts))
	})

	fc, err := newTestClient(handler).GetForecastAlerts(context.Background(), "Mumbai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fc.Alerts.Alert) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(fc.Alerts.Alert))
	}
	a := fc.Alerts.Alert[0]
	if a.Event != "Heavy Rain" {
		t.Errorf("expected event %q, got %q", "Heavy Rain", a.Event)
	}
	if a.Desc != "Heavy rainfall expected." {
		t.Errorf("unexpected desc %q", a.Desc)
	}
	if fc.Location.Name != "Mumbai" {
		t.Errorf("unexpected location %q", fc.Location.Name)
	}
}

// TestGetForecastAlerts_LocationEncoding tests that spaces in the location are encoded
func TestGetForecastAlerts_LocationEncoding(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "New York" {
			t.Errorf("expected q=New York, got %q", r.URL.Query().Get("q"))
		}
		if strings.Contains(r.URL.RawQuery, " ") {
			t.Errorf("raw query not encoded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"alerts": {"alert": []}}`))
	})

	if _, err := newTestClient(handler).GetForecastAlerts(context.Background(), "New York"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestGetForecastAlerts_APIErrorMessage tests that the WeatherAPI error body is surfaced
func TestGetForecastAlerts_APIErrorMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
	})

	_, err := newTestClient(handler).GetForecastAlerts(context.Background(), "Nowhere")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "No matching location found.") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

// TestGetForecastAlerts_APIError tests a non-200 response without a JSON body
func TestGetForecastAlerts_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newTestClient(handler).GetForecastAlerts(context.Background(), "London")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

// TestGetForecastAlerts_InvalidJSON tests handling of malformed responses
func TestGetForecastAlerts_InvalidJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alerts": `))
	})

	if _, err := newTestClient(handler).GetForecastAlerts(context.Background(), "London"); err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient("https://api.weatherapi.com/v1/", "k", 0)
	if c.BaseURL != "https://api.weatherapi.com/v1" {
		t.Errorf("expected trailing slash trimmed, got %q", c.BaseURL)
	}
	if c.HTTPClient == nil {
		t.Error("expected HTTP client")
	}
}
