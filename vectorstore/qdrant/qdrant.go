// Package qdrant implements the vectorstore.Store contract against the
// Qdrant REST API. Collections are created lazily with cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

type Store struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	exists, currentDim, err := s.collectionDimension(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return s.createCollection(ctx, dimension)
	}
	if currentDim > 0 && currentDim != dimension {
		if err := s.doRequest(ctx, http.MethodDelete, "/collections/"+s.collection, nil, nil); err != nil {
			return err
		}
		return s.createCollection(ctx, dimension)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":     uuid.NewString(),
			"vector": rec.Vector,
			"payload": map[string]any{
				"source":  rec.Source,
				"ordinal": rec.Ordinal,
				"content": rec.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	return s.doRequest(ctx, http.MethodPut, path, body, nil)
}

func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	if source == "" {
		return nil
	}
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source", "match": map[string]any{"value": source}},
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection)
	return s.doRequest(ctx, http.MethodPost, path, body, nil)
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if limit <= 0 {
		limit = 3
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.doRequest(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	results := make([]vectorstore.Result, 0, len(resp.Result))
	for _, item := range resp.Result {
		r := vectorstore.Result{Score: item.Score}
		if v, ok := item.Payload["content"].(string); ok {
			r.Text = v
		}
		if v, ok := item.Payload["source"].(string); ok {
			r.Source = v
		}
		if v, ok := item.Payload["ordinal"].(float64); ok {
			r.Ordinal = int(v)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) collectionDimension(ctx context.Context) (bool, int, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.doRequest(ctx, http.MethodGet, "/collections/"+s.collection, nil, &resp)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, resp.Result.Config.Params.Vectors.Size, nil
}

func (s *Store) createCollection(ctx context.Context, dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.doRequest(ctx, http.MethodPut, "/collections/"+s.collection, body, nil)
}

func (s *Store) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant API %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse qdrant response: %w", err)
	}
	return nil
}
