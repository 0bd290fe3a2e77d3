package pipeline

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits text into fixed-size segments that overlap by a fixed
// character count. Cuts prefer paragraph, then line, then word
// boundaries, and fall back to a hard cut when the window has none.
type Chunker struct {
	size    int
	overlap int
}

var separators = []string{"\n\n", "\n", " "}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split returns the chunk texts for the input. Empty input yields no
// chunks; input no longer than the chunk size yields exactly one chunk
// equal to the input.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		cut := c.cutPoint(text, start, end)
		chunks = append(chunks, text[start:cut])
		next := runeStart(text, cut-c.overlap)
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// ChunkArtifact wraps Split, tagging each chunk with the artifact's
// source URL and its ordinal within the artifact.
func (c *Chunker) ChunkArtifact(a Artifact) []Chunk {
	texts := c.Split(a.Text)
	chunks := make([]Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, Chunk{Text: t, Source: a.Source, Ordinal: i})
	}
	return chunks
}

// cutPoint picks where the chunk starting at start ends. A separator is
// only honored past the overlap rewind so the next chunk always makes
// forward progress.
func (c *Chunker) cutPoint(text string, start, end int) int {
	window := text[start:end]
	min := c.overlap + 1
	if min < len(window) {
		for _, sep := range separators {
			if i := strings.LastIndex(window, sep); i >= min {
				return start + i + len(sep)
			}
		}
	}
	// Hard cut: snap back so a multi-byte rune is never split.
	if cut := runeStart(text, end); cut > start {
		return cut
	}
	return end
}

// runeStart walks i back to the start of the rune it points into.
func runeStart(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
