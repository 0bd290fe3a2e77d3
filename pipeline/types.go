package pipeline

import "context"

// Page is one URL in the crawl frontier.
type Page struct {
	URL   string
	Depth int
}

// FetchResult carries either the raw HTML of a page or the error that
// prevented fetching it. Per-page errors do not abort a crawl.
type FetchResult struct {
	Page     Page
	HTMLBody []byte
	Err      error
}

// Artifact is the cleaned text of one crawled page, persisted in the
// content store and identified by its file path.
type Artifact struct {
	Path   string
	Source string
	Text   string
}

// Chunk is one overlapping segment of an artifact's text.
type Chunk struct {
	Text    string
	Source  string
	Ordinal int
}

// IngestSummary reports what one crawl-and-index run produced.
type IngestSummary struct {
	Pages   int
	Skipped int
	Chunks  int
}

// Answer is the query pipeline output: the generated text plus the
// deduplicated source URLs of the retrieved chunks, first-seen order.
type Answer struct {
	Text    string
	Sources []string
}

// Embedder turns a batch of texts into one vector per text,
// order-preserving.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a text completion for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
