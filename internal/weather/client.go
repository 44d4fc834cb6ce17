package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client handles WeatherAPI.com interactions
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new WeatherAPI client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError is the body WeatherAPI sends with non-200 responses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	requestURL := c.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("WeatherAPI error: %d %s", ae.Error.Code, ae.Error.Message)
		}
		return nil, fmt.Errorf("WeatherAPI error: %d %s", resp.StatusCode, resp.Status)
	}

	return body, nil
}

// ForecastResponse represents the parts of /forecast.json we read
type ForecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Alerts struct {
		Alert []struct {
			Headline  string `json:"headline"`
			Severity  string `json:"severity"`
			Areas     string `json:"areas"`
			Event     string `json:"event"`
			Effective string `json:"effective"`
			Expires   string `json:"expires"`
			Desc      string `json:"desc"`
		} `json:"alert"`
	} `json:"alerts"`
}

// GetForecastAlerts fetches a one-day forecast with alerts for a location
func (c *Client) GetForecastAlerts(ctx context.Context, location string) (*ForecastResponse, error) {
	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("q", location)
	params.Set("days", "1")
	params.Set("alerts", "yes")

	data, err := c.get(ctx, "/forecast.json", params)
	if err != nil {
		return nil, err
	}

	var fc ForecastResponse
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
