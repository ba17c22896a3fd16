// Package gemini generates text with the Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com"

	temperature     = 0.7
	maxOutputTokens = 1024
	requestTimeout  = 60 * time.Second
)

var ErrEmptyResponse = errors.New("gemini: response has no text")

type Adapter struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	hc       *http.Client
}

// New builds a client. endpoint is optional and overrides the public API
// base URL.
func New(apiKey, model, endpoint string, timeout time.Duration) (*Adapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("gemini: invalid endpoint: %w", err)
	}
	return &Adapter{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		timeout:  timeout,
		hc:       &http.Client{},
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	u := a.endpoint + "/v1beta/" + modelName(a.model) + ":generateContent"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// not ?key=: url.Error prints the full URL
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.hc.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	defer googleapi.CloseBody(resp)

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}
	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	return responseText(out)
}

func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

func responseText(resp generateResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
