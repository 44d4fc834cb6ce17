package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/swelljoe/alertagent/internal/fetch"
)

const defaultAnthropicModel = "claude-haiku-4-5"

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
	hasKey    bool
}

func NewAnthropicClient(apiKey, model, baseURL string, httpClient *http.Client) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.Model(model),
		modelName: model,
		hasKey:    apiKey != "",
	}
}

func (c *AnthropicClient) Name() string {
	return "anthropic/" + c.modelName
}

func (c *AnthropicClient) Summarize(ctx context.Context, report string) (string, error) {
	if !c.hasKey {
		return "", fetch.ErrMissingAPIKey
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   1024,
		Temperature: anthropic.Float(0.3),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(report))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", fmt.Errorf("no response from anthropic")
	}
	return content, nil
}
