package suggest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultEndpoint is the chat-completion endpoint used when none is
	// configured.
	DefaultEndpoint = "https://router.huggingface.co/v1/chat/completions"

	// maxSuggestionLen caps the hint length shown in reports.
	maxSuggestionLen = 120
)

// ClientConfig configures the chat-completion client.
type ClientConfig struct {
	Endpoint      string
	Token         string
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

// Client asks a hosted chat-completion API for mapping hints.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a suggestion client. The token is required; the
// request timeout bounds how long a single enrichment may take.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("suggest: token is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &tokenTransport{token: cfg.Token},
		},
	}, nil
}

// tokenTransport adds Bearer token auth to HTTP requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Suggest asks the API for a mapping hint. Responses are trimmed to the
// display cap and stripped of surrounding quotes. An empty completion
// falls back to the deterministic template.
func (c *Client) Suggest(ctx context.Context, target, candidate string, confidence float64) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a short suggestion (<=120 characters) for mapping %q to %q in an e-invoicing system. Confidence: %.2f. Be concise, human-readable, and practical.",
		candidate, target, confidence,
	)

	text, err := c.complete(ctx, c.cfg.Model, prompt)
	if err != nil {
		// One shot with the fallback model when the primary is overloaded.
		if c.cfg.FallbackModel != "" && isOverloaded(err) {
			text, err = c.complete(ctx, c.cfg.FallbackModel, prompt)
		}
		if err != nil {
			return "", err
		}
	}

	text = strings.Trim(strings.TrimSpace(text), `"'`)
	if len(text) > maxSuggestionLen {
		text = text[:maxSuggestionLen-3] + "..."
	}
	if text == "" {
		return Fallback(target, candidate), nil
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("suggest: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("suggest: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("suggest: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("suggest: read response: %w", err)
	}

	var parsed chatResponse
	// Body may be non-JSON on gateway errors; classification below only
	// needs the status code and whatever message survived.
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		if isLimitStatus(resp.StatusCode) || hasLimitIndicator(parsed.Error.Message) {
			return "", fmt.Errorf("suggest: status %d: %w", resp.StatusCode, ErrLimitExceeded)
		}
		return "", fmt.Errorf("suggest: status %d: %s", resp.StatusCode, strings.TrimSpace(parsed.Error.Message))
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// limitIndicators are message fragments that mean the request was
// refused for quota rather than failed outright.
var limitIndicators = []string{
	"rate limit",
	"quota exceeded",
	"limit exceeded",
	"too many requests",
	"overload",
	"usage limit",
	"billing",
}

func isLimitStatus(status int) bool {
	return status == http.StatusForbidden ||
		status == http.StatusTooManyRequests ||
		status == http.StatusServiceUnavailable
}

func hasLimitIndicator(msg string) bool {
	msg = strings.ToLower(msg)
	for _, i := range limitIndicators {
		if strings.Contains(msg, i) {
			return true
		}
	}
	return false
}

func isOverloaded(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overload") || strings.Contains(msg, "status 503")
}
