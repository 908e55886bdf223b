// Package gemini provides a textgen.Generator backed by the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/dayplanhq/dayplan/internal/config"
	"github.com/dayplanhq/dayplan/internal/resilience"
)

// Client calls the Gemini generateContent endpoint. Concurrent calls are
// bounded by a semaphore so a burst of commands cannot exhaust the API
// quota in one go.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
	sem        *semaphore.Weighted
}

// NewClient creates a new Gemini client from configuration.
func NewClient(cfg config.Gemini) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		sem: semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// request/response shapes for generateContent.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt to the model and returns the first candidate's
// text. It implements textgen.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire generate slot: %w", err)
	}
	defer c.sem.Release(1)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var result string
	call := func() error {
		url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(data))
		}

		var gr generateResponse
		if err := json.Unmarshal(data, &gr); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if gr.Error != nil {
			return fmt.Errorf("gemini API error %d: %s", gr.Error.Code, gr.Error.Message)
		}
		if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("gemini returned no candidates")
		}

		result = gr.Candidates[0].Content.Parts[0].Text
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return "", err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return "", err
	}
	return result, nil
}
