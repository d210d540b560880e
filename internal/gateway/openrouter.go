package gateway

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

	"github.com/go-viper/mapstructure/v2"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint prefix.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultTimeout bounds each model call. Frontier models routinely reason
// for minutes on hard questions.
const DefaultTimeout = 5 * time.Minute

// ModelParams are optional per-model request parameters, decoded from the
// config file's free-form maps.
type ModelParams struct {
	Temperature *float64 `mapstructure:"temperature" json:"temperature,omitempty"`
	TopP        *float64 `mapstructure:"top_p" json:"top_p,omitempty"`
	MaxTokens   int      `mapstructure:"max_tokens" json:"max_tokens,omitempty"`
}

// DecodeModelParams converts a config map (model → free-form parameter
// map) into typed ModelParams, rejecting unknown keys.
func DecodeModelParams(raw map[string]map[string]any) (map[string]ModelParams, error) {
	out := make(map[string]ModelParams, len(raw))
	for model, m := range raw {
		var p ModelParams
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &p,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(m); err != nil {
			return nil, fmt.Errorf("model params for %q: %w", model, err)
		}
		out[model] = p
	}
	return out, nil
}

// Options configures the OpenRouter gateway.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Params holds optional per-model request parameters.
	Params map[string]ModelParams
	// HTTPClient overrides the default client; used in tests.
	HTTPClient *http.Client
}

// OpenRouter is the production Gateway over the OpenRouter HTTP API.
// A single shared http.Client provides the reusable connection pool.
type OpenRouter struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	params  map[string]ModelParams
	client  *http.Client
}

// NewOpenRouter creates a Gateway talking to the OpenRouter API.
func NewOpenRouter(opts Options) *OpenRouter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &OpenRouter{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		params:  opts.Params,
		client:  client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Query implements [Gateway]. Ordinary failures come back as *CallError;
// only programming errors (e.g. an unmarshalable request) surface as plain
// errors.
func (g *OpenRouter) Query(ctx context.Context, model, prompt string) (*Reply, error) {
	start := time.Now()

	reqBody := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if p, ok := g.params[model]; ok {
		reqBody.Temperature = p.Temperature
		reqBody.TopP = p.TopP
		reqBody.MaxTokens = p.MaxTokens
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request for %s: %w", model, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", model, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		kind := FailureHTTP
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			kind = FailureTimeout
		}
		return nil, &CallError{Kind: kind, Model: model, Detail: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &CallError{Kind: FailureHTTP, Model: model, Status: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		kind := FailureHTTP
		if isQuotaResponse(resp.StatusCode, body) {
			kind = FailureQuota
		}
		return nil, &CallError{Kind: kind, Model: model, Status: resp.StatusCode, Detail: truncate(string(body), 512)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &CallError{Kind: FailureMalformed, Model: model, Detail: "invalid JSON: " + err.Error()}
	}
	if parsed.Error != nil {
		kind := FailureHTTP
		if isQuotaResponse(parsed.Error.Code, []byte(parsed.Error.Message)) {
			kind = FailureQuota
		}
		return nil, &CallError{Kind: kind, Model: model, Status: parsed.Error.Code, Detail: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return nil, &CallError{Kind: FailureMalformed, Model: model, Detail: "response has no choices"}
	}

	return &Reply{
		Content:    parsed.Choices[0].Message.Content,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// isQuotaResponse detects OpenRouter's credits-exhausted condition: the
// dedicated 402 status, or an error message mentioning credits.
func isQuotaResponse(status int, body []byte) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "insufficient credits") || strings.Contains(lower, "credits exhausted")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
