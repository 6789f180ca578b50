package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	openai "github.com/sashabaranov/go-openai"
)

// Completer sends one system and one user message and returns the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatClient calls an OpenAI-compatible chat completions API.
type ChatClient struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// ClientOption configures the underlying openai.ClientConfig.
type ClientOption func(*openai.ClientConfig)

// WithHTTPClient replaces the default client, which has Config.Timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *openai.ClientConfig) {
		if c != nil {
			cfg.HTTPClient = c
		}
	}
}

// NewChatClient creates a client. It returns ErrAPIKeyRequired when cfg has
// no usable API key.
func NewChatClient(cfg Config, opts ...ClientOption) (*ChatClient, error) {
	if !cfg.Configured() {
		return nil, ErrAPIKeyRequired
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(baseURL, "/")
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	apiCfg.HTTPClient = hc
	for _, opt := range opts {
		opt(&apiCfg)
	}

	return &ChatClient{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   maxTokens,
	}, nil
}

// Complete implements Completer.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", classifyCompletionError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyCompletionError maps go-openai errors onto the package sentinels.
func classifyCompletionError(err error) error {
	var (
		apiErr    *openai.APIError
		reqErr    *openai.RequestError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests || strings.Contains(msg, "rate limit"):
			return fmt.Errorf("%w: %s", ErrRateLimitExceeded, msg)
		case strings.Contains(msg, "context length"):
			return fmt.Errorf("%w: %s", ErrContextLengthExceeded, msg)
		}
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, apiErr.HTTPStatusCode, msg)
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0:
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", ErrRateLimitExceeded, err)
		}
		return fmt.Errorf("%w: status %d: %w", ErrUpstreamStatus, reqErr.HTTPStatusCode, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}
