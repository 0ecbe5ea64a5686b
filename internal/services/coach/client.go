package coach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoAPIKey is returned by Generate when no API key is configured.
var ErrNoAPIKey = errors.New("coach API key not configured")

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	api    openai.Client
	apiKey string
	model  string
}

// NewClient creates a client. A nil httpClient uses a 60s timeout.
func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			// The summary tab lets the user ask again.
			option.WithMaxRetries(0),
		),
		apiKey: apiKey,
		model:  model,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Generate returns the first completion for the two prompts.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNoAPIKey
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("chat request failed (status %d): %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
