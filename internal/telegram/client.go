package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMissingCredentials means the bot token or chat id is not configured.
var ErrMissingCredentials = errors.New("missing Telegram bot token or chat id")

// Client talks to the Telegram Bot API
type Client struct {
	BaseURL    string
	Token      string
	ChatID     string
	HTTPClient *http.Client
}

// NewClient creates a new Bot API client
func NewClient(baseURL, token, chatID string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		ChatID:     chatID,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
}

// SendMessage posts text as Markdown to the configured chat. Nothing is sent
// when either credential is missing.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c.Token == "" || c.ChatID == "" {
		return ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("chat_id", c.ChatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return redact(err, c.Token)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("Telegram API error: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// UpdatesResponse represents the getUpdates response
type UpdatesResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      []struct {
		UpdateID int64 `json:"update_id"`
		Message  *struct {
			Chat struct {
				ID       int64  `json:"id"`
				Type     string `json:"type"`
				Title    string `json:"title"`
				Username string `json:"username"`
			} `json:"chat"`
			Text string `json:"text"`
		} `json:"message"`
	} `json:"result"`
}

// Chat identifies a conversation the bot has received messages from.
type Chat struct {
	ID   int64
	Type string
	Name string
}

// Chats lists the distinct chats found in the bot's pending updates, in the
// order they first appear. Only the token is required.
func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	if c.Token == "" {
		return nil, ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, redact(err, c.Token)
	}
	defer resp.Body.Close()

	var updates UpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&updates); err != nil {
		return nil, fmt.Errorf("decode getUpdates: %w", err)
	}
	if !updates.OK {
		return nil, fmt.Errorf("Telegram API error: %d %s", resp.StatusCode, updates.Description)
	}

	seen := make(map[int64]bool)
	chats := make([]Chat, 0)
	for _, u := range updates.Result {
		if u.Message == nil || seen[u.Message.Chat.ID] {
			continue
		}
		seen[u.Message.Chat.ID] = true

		name := u.Message.Chat.Title
		if name == "" {
			name = u.Message.Chat.Username
		}
		chats = append(chats, Chat{ID: u.Message.Chat.ID, Type: u.Message.Chat.Type, Name: name})
	}
	return chats, nil
}

// redact keeps the bot token out of transport errors, which embed the URL.
func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
