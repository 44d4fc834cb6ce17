package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/swelljoe/alertagent/internal/fetch"
)

// Client fetches daily closes from the Twelve Data time_series endpoint
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Twelve Data client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// TimeSeriesResponse represents the /time_series response
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

// DailyCloses returns the two most recent daily closes for symbol, most
// recent first, exactly as the provider encodes them.
func (c *Client) DailyCloses(ctx context.Context, symbol string) ([]string, error) {
	if c.APIKey == "" {
		return nil, fetch.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1day")
	params.Set("outputsize", "2")
	params.Set("apikey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/time_series?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

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
		return nil, fmt.Errorf("Twelve Data error: %d %s", resp.StatusCode, resp.Status)
	}

	var ts TimeSeriesResponse
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, err
	}
	if ts.Status == "error" {
		return nil, fmt.Errorf("Twelve Data error: %d %s", ts.Code, ts.Message)
	}

	closes := make([]string, 0, len(ts.Values))
	for _, v := range ts.Values {
		closes = append(closes, v.Close)
	}
	return closes, nil
}
