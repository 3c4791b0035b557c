package sonar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"drift-board/internal/observability"
)

// DefaultBaseURL is the Perplexity API root.
const DefaultBaseURL = "https://api.perplexity.ai"

// DefaultModel is the research model used for planning and finalize calls.
const DefaultModel = "sonar-deep-research"

const (
	defaultMaxTokens = 2048
	requestTimeout   = 90 * time.Second
)

var ErrMissingAPIKey = errors.New("sonar api key not configured")

// Message is one turn of the conversation window sent to Sonar.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption and measured latency for one call.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	LatencySeconds   float64 `json:"latency"`
}

// CompletionRequest is one Sonar chat-completions call. Messages carry the
// memory window; System is injected as the leading system message.
type CompletionRequest struct {
	System    string
	Messages  []Message
	JSONOnly  bool
	MaxTokens int
}

// Client is the Sonar surface handlers depend on.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, Usage, error)
}

// HTTPClient calls the Perplexity chat-completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewHTTPClient constructs an HTTPClient. An empty baseURL selects the
// production endpoint.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   DefaultModel,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type completionBody struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete runs one chat-completions call with the injected memory window
// and returns the assistant content plus usage.
func (c *HTTPClient) Complete(ctx context.Context, req CompletionRequest) (string, Usage, error) {
	if c.apiKey == "" {
		return "", Usage{}, ErrMissingAPIKey
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := completionBody{
		Model:       c.model,
		Messages:    append([]Message{{Role: "system", Content: req.System}}, req.Messages...),
		Temperature: 0.4,
		TopP:        1,
		MaxTokens:   maxTokens,
		Stream:      false,
	}
	if req.JSONOnly {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", Usage{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", Usage{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start).Seconds()
	if err != nil {
		observability.ObserveSonarRequest(c.model, "transport_error", latency)
		return "", Usage{}, fmt.Errorf("sonar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.ObserveSonarRequest(c.model, fmt.Sprintf("http_%d", resp.StatusCode), latency)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", Usage{}, fmt.Errorf("sonar request failed: status %d: %s", resp.StatusCode, snippet)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observability.ObserveSonarRequest(c.model, "decode_error", latency)
		return "", Usage{}, fmt.Errorf("sonar response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		observability.ObserveSonarRequest(c.model, "empty", latency)
		return "", Usage{}, errors.New("sonar response: no choices")
	}

	observability.ObserveSonarRequest(c.model, "ok", latency)
	usage := Usage{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
		LatencySeconds:   latency,
	}
	return parsed.Choices[0].Message.Content, usage, nil
}
