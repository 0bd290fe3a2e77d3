// Package vectorstore defines the persistence contract for embedded
// chunks and the result shape of similarity searches.
package vectorstore

import "context"

// Record is one embedded chunk as persisted in a collection.
type Record struct {
	Text    string
	Source  string
	Ordinal int
	Vector  []float32
}

// Result is a single similarity-search hit. Score is cosine similarity;
// results are ordered by non-increasing Score.
type Result struct {
	Text    string
	Source  string
	Ordinal int
	Score   float64
}

// Store persists vectors in a named collection and answers
// nearest-neighbor queries by cosine similarity.
type Store interface {
	// EnsureCollection creates the collection for the given vector
	// dimension if it does not exist yet.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert appends records to the collection.
	Upsert(ctx context.Context, records []Record) error

	// DeleteBySource removes all records originating from the given
	// source URL. Used when a page is re-crawled.
	DeleteBySource(ctx context.Context, source string) error

	// Search returns at most limit records nearest to vector.
	Search(ctx context.Context, vector []float32, limit int) ([]Result, error)
}
