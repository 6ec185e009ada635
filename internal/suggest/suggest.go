// Package suggest calls an external model to propose a canonical name for a
// set of observed variants. The collaborator has no effect on the store and
// runs outside the mutation lock.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Suggestion error sentinels.
var (
	// ErrNotConfigured means no API key was provided at startup.
	ErrNotConfigured = errors.New("suggestion service not configured")
	// ErrNoNames means the request carried no usable name variants.
	ErrNoNames = errors.New("at least one name is required")
	// ErrUpstream means the service was reachable but failed or returned a
	// malformed response.
	ErrUpstream = errors.New("suggestion service error")
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 200
	apiVersion       = "2023-06-01"

	defaultTemperature = 0.3
)

// Config controls the upstream model call. Zero values take defaults; an
// empty APIKey leaves the client unconfigured.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	// Guidance is appended to the prompt's requirement list, letting
	// deployments tune naming conventions without a rebuild.
	Guidance string
}

// Client suggests canonical names via the Anthropic Messages API.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a suggestion client. A client without an API key is still
// usable; every Suggest call returns ErrNotConfigured.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Model returns the model the client is configured to call.
func (c *Client) Model() string {
	return c.cfg.Model
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Suggest asks the model for one standardized name covering all the given
// variants. The result is uppercased to match representative-name
// normalization.
func (c *Client) Suggest(ctx context.Context, names []string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if len(names) == 0 {
		return "", ErrNoNames
	}

	body, err := json.Marshal(messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    []message{{Role: "user", Content: c.buildPrompt(names)}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal suggestion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("%w: %s: %s", ErrUpstream, parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: HTTP %s", ErrUpstream, resp.Status)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}

	suggested := strings.TrimSpace(parsed.Content[0].Text)
	suggested = strings.Trim(suggested, `"'`)
	return strings.ToUpper(suggested), nil
}

func (c *Client) buildPrompt(names []string) string {
	var b strings.Builder
	b.WriteString("I have the following company name variations for the same organization:\n\n")
	for _, name := range names {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nBased on these variations, please suggest the most appropriate, official, and standardized company name.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Use the most complete and formal version\n")
	b.WriteString("- Remove unnecessary abbreviations unless they're part of the official name\n")
	b.WriteString("- Standardize capitalization appropriately\n")
	b.WriteString("- Keep it concise but complete\n")
	if c.cfg.Guidance != "" {
		b.WriteString("- ")
		b.WriteString(c.cfg.Guidance)
		b.WriteString("\n")
	}
	b.WriteString("- Return ONLY the suggested name, nothing else\n\nSuggested name:")
	return b.String()
}
