package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const promptTemplate = `You are an intelligent real-time alert-monitoring assistant. You will receive a session log of weather alerts, news alerts and stock price alerts. Write a clean, human-readable summary in 4-6 bullet points:

- Highlight any significant stock movements.
- Call out severe weather events and the affected regions.
- Mention any notable news items.
- Conclude with an overall alert level (Low, Medium, High).
- Suggest any actions to take.

Use this format:
🧠 Agent Summary:
- 🚨 TSLA dropped 6.2% today, possibly due to disappointing Q2 results.
- 🌧️ Heavy rainfall and flooding expected in Mumbai and Pune tomorrow.
- 📰 Top news: power workers nationwide protest against privatization.
- 🟡 Overall alert level: Medium. Stay alert for flood and stock triggers.

Here is the log:
"""
{{report}}
"""
Now write the summary starting with: "🧠 Agent Summary:"`

// Prompt embeds the full report text into the fixed instruction template.
func Prompt(report string) string {
	return strings.Replace(promptTemplate, "{{report}}", report, 1)
}

// Summarizer turns a session report into a short digest.
type Summarizer interface {
	Summarize(ctx context.Context, report string) (string, error)
	Name() string
}

// Options configures a provider.
type Options struct {
	Provider        string
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	BaseURL         string
	Timeout         time.Duration
}

// New builds the summarizer for opts.Provider ("openai" or "anthropic").
func New(opts Options) (Summarizer, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "openai":
		return NewOpenAIClient(opts.OpenAIAPIKey, opts.Model, opts.BaseURL, httpClient), nil
	case "anthropic":
		return NewAnthropicClient(opts.AnthropicAPIKey, opts.Model, opts.BaseURL, httpClient), nil
	}
	return nil, fmt.Errorf("unknown summarizer provider %q", opts.Provider)
}
