// Package vision estimates product attributes from photos by calling a
// hosted vision model. The model is asked for a strict JSON object; fenced
// responses are tolerated.
package vision

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

const (
	defaultBaseURL        = "https://api.anthropic.com"
	defaultModel          = "claude-3-5-sonnet-20241022"
	defaultRequestTimeout = 60 * time.Second
	apiVersion            = "2023-06-01"
	maxResponseTokens     = 1024

	analysisPrompt = `Посмотри на фото керамического изделия и определи: примерную цену в рублях (число), материал и примерный размер. Ответь строго в формате JSON: {"price": число, "material": "строка", "size": "строка"}. Без пояснений.`
)

var (
	// ErrUpstream indicates that the model API returned a non-2xx status or
	// was unreachable.
	ErrUpstream = errors.New("vision model unavailable")
	// ErrParse indicates that the model reply could not be parsed as the
	// expected JSON object.
	ErrParse = errors.New("unparseable vision reply")
)

// Analysis holds the attributes the model extracted from a product photo.
// Fields the model omitted stay nil.
type Analysis struct {
	Price    *float64 `json:"price"`
	Material *string  `json:"material"`
	Size     *string  `json:"size"`
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host, for tests or
// compatible proxies.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client calls the vision model API. A client with an empty API key is
// disabled; handlers report the feature as unconfigured.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient constructs a vision client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// AnalyzeProductPhoto sends the base64-encoded image to the model and parses
// the returned attribute estimate.
func (c *Client) AnalyzeProductPhoto(ctx context.Context, imageBase64, mediaType string) (Analysis, error) {
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	payload := messageRequest{
		Model:     c.model,
		MaxTokens: maxResponseTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      imageBase64,
					},
				},
				{Type: "text", Text: analysisPrompt},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Analysis{}, fmt.Errorf("encode vision request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("create vision request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-api-key", c.apiKey)
	request.Header.Set("anthropic-version", apiVersion)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return Analysis{}, fmt.Errorf("%w: status %d", ErrUpstream, response.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return Analysis{}, fmt.Errorf("read vision response: %w", err)
	}
	var decoded messageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	var text string
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return Analysis{}, fmt.Errorf("%w: empty reply", ErrParse)
	}
	var analysis Analysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return analysis, nil
}

// extractJSON strips Markdown code fences the model sometimes wraps around
// its reply.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}
