package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

const (
	defaultModel   = "z-ai/glm-4.5-air:free"
	requestTimeout = 90 * time.Second
	temperature    = 0.7
	maxTokens      = 1024
)

func New(apiKey, model, baseURL string, timeout time.Duration) *Adapter {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, timeout: timeout, client: &http.Client{Timeout: 5 * time.Minute}}
}

// Generate sends prompt as a single user message and returns the reply text.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	if a.key == "" {
		return "", errors.New("openrouter: api key is not set")
	}
	payload := map[string]any{
		"model":       a.model,
		"stream":      false,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openrouter timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("openrouter request: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openrouter decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("openrouter: no choices in response")
	}
	return messageContentToString(raw.Choices[0].Message.Content)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
