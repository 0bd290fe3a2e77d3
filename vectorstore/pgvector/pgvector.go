// Package pgvector implements the vectorstore.Store contract on top of
// PostgreSQL with the pgvector extension. Each collection maps to one
// table holding (source, ordinal, content, embedding) rows.
package pgvector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"

	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
)

var collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

type Store struct {
	pool       *pgxpool.Pool
	collection string
}

// NewStore wraps an existing pool. The collection name doubles as the
// table name, so it must be a plain lowercase identifier.
func NewStore(pool *pgxpool.Pool, collection string) (*Store, error) {
	if !collectionNameRe.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	return &Store{pool: pool, collection: collection}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("ensure vector extension: %w", err)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			ordinal INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			indexed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.collection, dimension)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	idx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`,
		s.collection, s.collection,
	)
	if _, err := s.pool.Exec(ctx, idx); err != nil {
		return fmt.Errorf("create index on %s: %w", s.collection, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	sql := fmt.Sprintf(
		`INSERT INTO %s (source, ordinal, content, embedding) VALUES ($1, $2, $3, $4)`,
		s.collection,
	)
	for _, rec := range records {
		batch.Queue(sql, rec.Source, rec.Ordinal, rec.Text, pgvec.NewVector(rec.Vector))
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec %d: %w", i, err)
		}
	}
	br.Close()

	return tx.Commit(ctx)
}

func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE source = $1`, s.collection)
	if _, err := s.pool.Exec(ctx, sql, source); err != nil {
		return fmt.Errorf("delete by source: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if limit <= 0 {
		limit = 3
	}
	// <=> is cosine distance; similarity = 1 - distance. Ordering by
	// distance ascending keeps ties in insertion (id) order.
	sql := fmt.Sprintf(`
		SELECT content, source, ordinal, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`, s.collection)
	rows, err := s.pool.Query(ctx, sql, pgvec.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.collection, err)
	}
	defer rows.Close()

	var results []vectorstore.Result
	for rows.Next() {
		var r vectorstore.Result
		if err := rows.Scan(&r.Text, &r.Source, &r.Ordinal, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
