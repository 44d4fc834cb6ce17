package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/swelljoe/alertagent/internal/fetch"
)

const defaultOpenAIModel = "gpt-4o"

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	hasKey    bool
}

func NewOpenAIClient(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModel(model),
		modelName: model,
		hasKey:    apiKey != "",
	}
}

func (c *OpenAIClient) Name() string {
	return "openai/" + c.modelName
}

func (c *OpenAIClient) Summarize(ctx context.Context, report string) (string, error) {
	if !c.hasKey {
		return "", fetch.ErrMissingAPIKey
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(Prompt(report)),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return content, nil
}
