package weather

import (
	"context"
	"errors"
	"strings"

	"github.com/apex/log"

	"github.com/swelljoe/alertagent/internal/fetch"
)

// ErrNoLocation is returned when Fetch is called without a location.
var ErrNoLocation = errors.New("location is required")

// Service turns forecast responses into alert records
type Service struct {
	client *Client
}

// NewService creates a new weather service
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Fetch returns the active alerts for a location. It never fails: transport
// and decode problems come back as a Failed result.
func (s *Service) Fetch(ctx context.Context, location string) fetch.Result[Alert] {
	location = strings.TrimSpace(location)
	if location == "" {
		return fetch.Failed[Alert](ErrNoLocation)
	}
	if s.client == nil || s.client.APIKey == "" {
		log.WithField("source", "weather").Warn("WEATHER_API_KEY not set, skipping weather alerts")
		return fetch.Failed[Alert](fetch.ErrMissingAPIKey)
	}

	fc, err := s.client.GetForecastAlerts(ctx, location)
	if err != nil {
		log.WithError(err).WithField("location", location).Warn("Failed to fetch weather alerts")
		return fetch.Failed[Alert](err)
	}

	return fetch.OK(transform(fc))
}

func transform(fc *ForecastResponse) []Alert {
	alerts := make([]Alert, 0, len(fc.Alerts.Alert))
	for _, a := range fc.Alerts.Alert {
		alerts = append(alerts, Alert{
			Event:       a.Event,
			Effective:   a.Effective,
			Expires:     a.Expires,
			Description: a.Desc,
			Headline:    a.Headline,
			Severity:    a.Severity,
			Areas:       a.Areas,
		})
	}
	return alerts
}
