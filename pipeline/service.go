package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
)

// Service ties the ingestion path (crawl, chunk, embed, upsert) and the
// query path (embed, search, generate) together.
type Service struct {
	crawler   *Crawler
	chunker   *Chunker
	embedder  Embedder
	generator Generator
	store     vectorstore.Store
	maxDepth  int
	batchSize int
	topK      int
	log       *slog.Logger
}

type ServiceConfig struct {
	MaxDepth  int
	BatchSize int
	TopK      int
}

func NewService(crawler *Crawler, chunker *Chunker, embedder Embedder, generator Generator, store vectorstore.Store, cfg ServiceConfig, log *slog.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		crawler:   crawler,
		chunker:   chunker,
		embedder:  embedder,
		generator: generator,
		store:     store,
		maxDepth:  cfg.MaxDepth,
		batchSize: cfg.BatchSize,
		topK:      cfg.TopK,
		log:       log,
	}
}

// CrawlAndIndex crawls the site at seedURL, chunks and embeds every
// artifact, and replaces the indexed records for each re-crawled page.
// An embedding failure aborts the run; the crawl itself tolerates
// per-page failures.
func (s *Service) CrawlAndIndex(ctx context.Context, seedURL string) (IngestSummary, error) {
	artifacts, skipped, err := s.crawler.Crawl(ctx, seedURL, s.maxDepth)
	if err != nil {
		return IngestSummary{}, err
	}

	summary := IngestSummary{Pages: len(artifacts), Skipped: skipped}
	collectionReady := false

	for _, artifact := range artifacts {
		chunks := s.chunker.ChunkArtifact(artifact)
		if len(chunks) == 0 {
			continue
		}

		var records []vectorstore.Record
		for start := 0; start < len(chunks); start += s.batchSize {
			end := start + s.batchSize
			if end > len(chunks) {
				end = len(chunks)
			}
			batch := chunks[start:end]

			texts := make([]string, len(batch))
			for i, ch := range batch {
				texts[i] = ch.Text
			}
			vectors, err := s.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return summary, fmt.Errorf("embed %s: %w", artifact.Source, err)
			}
			if len(vectors) != len(batch) {
				return summary, fmt.Errorf("embed %s: got %d vectors for %d chunks", artifact.Source, len(vectors), len(batch))
			}
			for i, ch := range batch {
				records = append(records, vectorstore.Record{
					Text:    ch.Text,
					Source:  ch.Source,
					Ordinal: ch.Ordinal,
					Vector:  vectors[i],
				})
			}
		}

		if !collectionReady {
			if err := s.store.EnsureCollection(ctx, len(records[0].Vector)); err != nil {
				return summary, fmt.Errorf("ensure collection: %w", err)
			}
			collectionReady = true
		}
		// Re-crawled pages replace their old records instead of piling up.
		if err := s.store.DeleteBySource(ctx, artifact.Source); err != nil {
			return summary, fmt.Errorf("clear old records for %s: %w", artifact.Source, err)
		}
		if err := s.store.Upsert(ctx, records); err != nil {
			return summary, fmt.Errorf("store %s: %w", artifact.Source, err)
		}

		summary.Chunks += len(records)
		s.log.Info("indexed artifact", "source", artifact.Source, "chunks", len(records))
	}

	return summary, nil
}

const answerPromptTemplate = `Use the following context to answer the user's question. If the context doesn't contain relevant information, politely say so and provide general guidance.

Context:
%s

Question: %s

Provide a clear, professional, and helpful response:`

// Answer embeds the question, retrieves the nearest chunks, and asks the
// generator for a grounded response. An empty index is a degraded mode,
// not an error: the question is forwarded with an empty context block.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return Answer{}, fmt.Errorf("embedding returned empty vector")
	}

	results, err := s.store.Search(ctx, vectors[0], s.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("search index: %w", err)
	}
	if len(results) == 0 {
		s.log.Warn("no indexed context for question")
	}

	var texts []string
	var sources []string
	seen := make(map[string]struct{})
	for _, r := range results {
		texts = append(texts, r.Text)
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		sources = append(sources, r.Source)
	}

	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(texts, "\n\n"), question)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return Answer{Text: text, Sources: sources}, nil
}
