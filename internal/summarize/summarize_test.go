package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/swelljoe/alertagent/internal/fetch"
)

func TestPrompt(t *testing.T) {
	p := Prompt("AAPL: 145.00 -> 150.00 (+5.00, +3.45%) ALERT")

	for _, want := range []string{
		"4-6 bullet points",
		"overall alert level (Low, Medium, High)",
		"Suggest any actions",
		"AAPL: 145.00 -> 150.00 (+5.00, +3.45%) ALERT",
		`starting with: "🧠 Agent Summary:"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("expected %q in prompt", want)
		}
	}
	if strings.Contains(p, "{{report}}") {
		t.Error("placeholder left in prompt")
	}
	if strings.Contains(p, "%!") {
		t.Error("prompt contains a formatting artefact")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		name     string
		wantErr  bool
	}{
		{provider: "", name: "openai/gpt-4o"},
		{provider: "openai", name: "openai/gpt-4o"},
		{provider: " Anthropic ", name: "anthropic/claude-haiku-4-5"},
		{provider: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			s, err := New(Options{Provider: tt.provider, Timeout: time.Second})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Name() != tt.name {
				t.Errorf("expected %q, got %q", tt.name, s.Name())
			}
		})
	}
}

func TestMissingKeys(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	for _, s := range []Summarizer{
		NewOpenAIClient("", "", srv.URL, srv.Client()),
		NewAnthropicClient("", "", srv.URL, srv.Client()),
	} {
		if _, err := s.Summarize(context.Background(), "log"); !errors.Is(err, fetch.ErrMissingAPIKey) {
			t.Errorf("%s: expected ErrMissingAPIKey, got %v", s.Name(), err)
		}
	}
	if calls != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
}

func TestOpenAISummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "gpt-4o" {
			t.Errorf("expected gpt-4o, got %q", req.Model)
		}
		if req.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", req.Temperature)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || !strings.Contains(req.Messages[0].Content, "TSLA fell") {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1720000000,
  "model": "gpt-4o",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "  🧠 Agent Summary:\n- 🟢 Overall alert level: Low  "},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20}
}`))
	}))
	defer srv.Close()

	s := NewOpenAIClient("test-key", "", srv.URL, srv.Client())
	got, err := s.Summarize(context.Background(), "TSLA fell 6%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "🧠 Agent Summary:\n- 🟢 Overall alert level: Low" {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestOpenAISummarizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("bad-key", "", srv.URL, srv.Client()).Summarize(context.Background(), "log")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "openai API error") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestAnthropicSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "claude-haiku-4-5" || req.MaxTokens != 1024 {
			t.Errorf("unexpected request %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-haiku-4-5",
  "content": [{"type": "text", "text": "🧠 Agent Summary:\n- 🔴 Overall alert level: High"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 10}
}`))
	}))
	defer srv.Close()

	got, err := NewAnthropicClient("test-key", "", srv.URL, srv.Client()).Summarize(context.Background(), "log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "🧠 Agent Summary:\n- 🔴 Overall alert level: High" {
		t.Errorf("unexpected summary %q", got)
	}
}
