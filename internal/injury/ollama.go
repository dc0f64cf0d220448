// Package injury classifies news articles: does the article report a
// player injury, and if so, whose. The judgement comes from a local
// language model; everything around it is defensive parsing, since
// the model's output format cannot be trusted.
package injury

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to an Ollama generate endpoint.
type Client struct {
	generateURL string
	model       string
	httpClient  *http.Client
	log         *zap.SugaredLogger
}

// NewClient creates an Ollama client. generateURL is the full
// /api/generate endpoint.
func NewClient(generateURL, model string, log *zap.SugaredLogger) *Client {
	return &Client{
		generateURL: generateURL,
		model:       model,
		// Generation on CPU hosts is slow, so the timeout is generous.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt and returns the raw completion. Any failure
// yields an empty string: a model outage must not abort the article
// run, the caller routes empty answers to manual review.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		c.log.Errorw("marshaling generate request", "error", err)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(payload))
	if err != nil {
		c.log.Errorw("building generate request", "error", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("model request failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.log.Warnw("model request failed", "status", resp.StatusCode)
		return ""
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warnw("decoding model response", "error", err)
		return ""
	}
	return out.Response
}
