// Package gateway talks to the external OpenAI-compatible aggregator that
// fronts every model in the catalogue.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1/"

var ErrEmptyCompletion = errors.New("gateway returned no completion")

// Config holds the aggregator connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client implements model.Completer against the aggregator.
type Client struct {
	api     openai.Client
	timeout time.Duration
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	opts := []option.RequestOption{
		option.WithBaseURL(base),
		option.WithAPIKey(cfg.APIKey),
		// Failures surface per card; no retries.
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Client{api: openai.NewClient(opts...), timeout: cfg.Timeout}
}

// Complete sends prompt as a single user message to the upstream model.
func (c *Client) Complete(ctx context.Context, upstream, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(upstream),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", describe(upstream, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", upstream, ErrEmptyCompletion)
	}
	return completion.Choices[0].Message.Content, nil
}

// Ping lists the gateway's models; nil means the gateway is reachable and the
// key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Models.List(ctx); err != nil {
		return describe("models", err)
	}
	return nil
}

// describe turns transport and API errors into short messages that keep the
// status code.
func describe(what string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: rate limited (HTTP 429): %w", what, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: authentication failed (HTTP 401): %w", what, err)
		case http.StatusForbidden:
			return fmt.Errorf("%s: permission denied (HTTP 403): %w", what, err)
		case http.StatusServiceUnavailable:
			return fmt.Errorf("%s: service unavailable (HTTP 503): %w", what, err)
		default:
			return fmt.Errorf("%s: gateway returned status %d: %w", what, apiErr.StatusCode, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out: %w", what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
