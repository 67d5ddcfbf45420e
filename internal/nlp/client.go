package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the external inference service over HTTP.
// It implements both TextClassifier and Embedder; main wires it in only
// when NLP_BASE_URL is configured, otherwise the keyword fallbacks run.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Classify(ctx context.Context, text string, labels []string) (Prediction, error) {
	var out classifyResponse
	if err := c.post(ctx, "/v1/classify", classifyRequest{Text: text, Labels: labels}, &out); err != nil {
		return Prediction{}, err
	}
	if out.Label == "" {
		return Prediction{}, fmt.Errorf("nlp: classify returned empty label")
	}
	return Prediction{Label: out.Label, Confidence: out.Confidence}, nil
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var out embedResponse
	if err := c.post(ctx, "/v1/embed", embedRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("nlp: embed returned empty vector")
	}
	return out.Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("nlp: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("nlp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nlp: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nlp: %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nlp: decode response: %w", err)
	}
	return nil
}
