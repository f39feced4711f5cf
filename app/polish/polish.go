// Package polish rewrites posting descriptions through an OpenAI-compatible
// text-generation service. The collaborator is best-effort by contract: any
// failure degrades to the original description, callers never see an error.
package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
)

// Params holds the collaborator configuration. Empty APIKey disables the
// integration, Polish then returns inputs unchanged.
type Params struct {
	APIKey      string
	BaseURL     string // OpenAI-compatible endpoint, e.g. https://api.openai.com/v1
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Polisher is the text-polishing client
type Polisher struct {
	params Params
	client *http.Client
}

// chat wire types, OpenAI-compatible format
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New makes a polisher. Zero-value timeout defaults to 30s.
func New(p Params) *Polisher {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = 1000
	}
	return &Polisher{params: p, client: &http.Client{Timeout: p.Timeout}}
}

// Enabled reports whether the integration is configured
func (p *Polisher) Enabled() bool { return p.params.APIKey != "" }

// Polish rewrites the description for the given posting title. On any
// failure the original description is returned unchanged, the only
// observable sign of trouble is a log line.
func (p *Polisher) Polish(ctx context.Context, title, description string) string {
	if !p.Enabled() {
		return description
	}

	prompt := fmt.Sprintf(`You are an expert HR writing consultant specialized in Thai professional communication.
Professionalize the following job description for an internal job board in THAI LANGUAGE.
Make it engaging, clear, use professional Thai terminology, and highlight why an internal candidate should apply.
Job Title: %s
Current Description: %s

Return ONLY the improved description text in Thai.`, title, description)

	req := chatRequest{
		Model:       p.params.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   p.params.MaxTokens,
		Temperature: p.params.Temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("[WARN] polish request marshal failed: %v", err)
		return description
	}

	url := strings.TrimSuffix(p.params.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[WARN] polish request failed: %v", err)
		return description
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.params.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		log.Printf("[WARN] polish call failed: %v", err)
		return description
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		log.Printf("[WARN] polish response read failed: %v", err)
		return description
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] polish call returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return description
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		log.Printf("[WARN] polish response decode failed: %v", err)
		return description
	}
	if parsed.Error != nil {
		log.Printf("[WARN] polish service error: %s", parsed.Error.Message)
		return description
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		log.Printf("[WARN] polish returned no content for %q", title)
		return description
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content)
}
