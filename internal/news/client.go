package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/swelljoe/alertagent/internal/fetch"
)

type Article struct {
	PublishedAt time.Time
	Title       string
	Description string
	URL         string
	Source      string
}

// Client queries the NewsAPI /everything endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, apiKey string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *Client) Name() string {
	return "NewsAPI"
}

// Fetch returns articles about topic published over the last 24 hours.
func (c *Client) Fetch(ctx context.Context, topic string) fetch.Result[Article] {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fetch.Failed[Article](fmt.Errorf("topic is required"))
	}
	if c.apiKey == "" {
		log.WithField("source", "news").Warn("NEWS_API_KEY not set, skipping news alerts")
		return fetch.Failed[Article](fetch.ErrMissingAPIKey)
	}

	articles, err := c.fetch(ctx, topic)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Warn("Failed to fetch news alerts")
		return fetch.Failed[Article](err)
	}
	return fetch.OK(articles)
}

func (c *Client) fetch(ctx context.Context, topic string) ([]Article, error) {
	now := c.now().UTC()
	params := url.Values{}
	params.Set("q", topic)
	params.Set("from", now.Add(-24*time.Hour).Format(time.DateOnly))
	params.Set("to", now.Format(time.DateOnly))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw naResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK || raw.Status == "error" {
		if raw.Message != "" {
			return nil, fmt.Errorf("newsapi error: %d %s", resp.StatusCode, raw.Message)
		}
		return nil, fmt.Errorf("newsapi error: %d %s", resp.StatusCode, resp.Status)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			PublishedAt: publishedAt,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			Source:      item.Source.Name,
		})
	}

	return articles, nil
}

type naResponse struct {
	Status   string          `json:"status"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Articles []naArticleItem `json:"articles"`
}

type naArticleItem struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}
