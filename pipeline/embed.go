package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type EmbeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type EmbeddingResponse struct {
	Data []EmbeddingData `json:"data"`
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

type EmbedderConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

func NewOpenAIEmbedder(cfg EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1/embeddings"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIEmbedder{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// EmbedBatch returns one vector per input text, order-preserving. The
// whole batch fails as a unit. Rate limits and 5xx responses are retried
// with Fibonacci backoff before giving up.
func (c *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var vectors [][]float32
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := postJSON(ctx, c.client, c.endpoint, c.apiKey, reqBody)
		if err != nil {
			return err
		}

		var result EmbeddingResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if len(result.Data) != len(texts) {
			return fmt.Errorf("embedding API returned %d vectors for %d inputs", len(result.Data), len(texts))
		}

		vectors = make([][]float32, len(texts))
		for i, d := range result.Data {
			idx := d.Index
			if idx < 0 || idx >= len(vectors) {
				idx = i
			}
			vectors[idx] = d.Embedding
		}
		for i, v := range vectors {
			if len(v) == 0 {
				return fmt.Errorf("embedding API returned empty vector at index %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// postJSON sends an authorized JSON POST and returns the response body.
// Transport errors, 429s and 5xx statuses are marked retryable.
func postJSON(ctx context.Context, client *http.Client, endpoint, apiKey string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("API %d: %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
