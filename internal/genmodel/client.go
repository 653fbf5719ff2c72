// Package genmodel implements the generative-model collaborator: an
// OpenAI-style chat-completions client used for higher-quality rewriting and
// profile synthesis. The local engine remains the deterministic fallback for
// every call in this package.
package genmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/attuneweb/attune/internal/apperr"
	"github.com/attuneweb/attune/internal/profile"
)

// Config holds generative-model client settings.
type Config struct {
	BaseURL           string
	Token             string
	Model             string
	MaxTokens         int
	Temperature       float64
	TimeoutSeconds    int
	RequestsPerMinute int
}

// Client talks to the chat-completions endpoint. All calls pass through a
// client-side rate limiter to respect the collaborator's throttling.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// APIError is a non-2xx response from the model endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genmodel: API error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets callers match the error taxonomy with errors.Is.
func (e *APIError) Unwrap() error {
	return apperr.ErrExternalService
}

// NewClient creates a model client. BaseURL and Token are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("genmodel: base URL and token are required")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SimplifyText asks the model to rewrite content according to the resolved
// profile settings. The instruction prefix is deterministic for a given
// Settings value.
func (c *Client) SimplifyText(ctx context.Context, content string, s profile.Settings) (string, error) {
	prompt := InstructionPrefix(s) + "\n\nText:\n" + content
	out, err := c.complete(ctx, "You rewrite text to make it easier to read. Return only the rewritten text with no extra commentary.", prompt)
	if err != nil {
		return "", err
	}
	return out, nil
}

// GenerateProfile asks the model to synthesize a cognitive profile from
// onboarding answers. The response must be strict JSON; code fences are
// stripped before decoding, and the decoded profile is validated before use.
func (c *Client) GenerateProfile(ctx context.Context, answers map[string]string) (*profile.Profile, error) {
	raw, err := c.complete(ctx, profileSystemPrompt, profilePrompt(answers))
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &p); err != nil {
		return nil, fmt.Errorf("%w: model returned invalid profile JSON: %v", apperr.ErrExternalService, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: model returned schema-invalid profile: %v", apperr.ErrExternalService, err)
	}
	p.Metadata.GeneratedBy = profile.GeneratedByModel
	return &p, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("genmodel: rate limit wait: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("genmodel: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genmodel: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperr.ErrExternalService, err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty model response", apperr.ErrExternalService)
	}
	return chat.Choices[0].Message.Content, nil
}
