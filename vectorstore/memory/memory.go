// Package memory is a brute-force in-memory vectorstore.Store used for
// tests and for running the service without external infrastructure.
// Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
)

type Store struct {
	mu        sync.RWMutex
	dimension int
	records   []vectorstore.Record
}

func NewStore() *Store { return &Store{} }

func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("dimension mismatch: collection has %d, got %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if s.dimension != 0 && len(rec.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: want %d, got %d", s.dimension, len(rec.Vector))
		}
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.Source != source {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if limit <= 0 {
		limit = 3
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]vectorstore.Result, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, vectorstore.Result{
			Text:    rec.Text,
			Source:  rec.Source,
			Ordinal: rec.Ordinal,
			Score:   cosine(rec.Vector, vector),
		})
	}
	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
