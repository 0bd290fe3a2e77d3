package pipeline

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactStore writes one cleaned text file per crawled page under a
// content directory. File names are derived from the page URL so the
// same page always maps to the same artifact.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	if dir == "" {
		dir = "scraped_content"
	}
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) Dir() string { return s.dir }

// Write persists the cleaned text for a URL, overwriting any previous
// artifact for the same page.
func (s *ArtifactStore) Write(pageURL *url.URL, text string) (Artifact, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create content dir: %w", err)
	}
	name := FileNameForURL(pageURL)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write artifact %s: %w", path, err)
	}
	return Artifact{Path: path, Source: SourceFromFileName(name), Text: text}, nil
}

// FileNameForURL maps a URL to its artifact file name:
// host plus path with slashes replaced by underscores, ".txt" appended.
func FileNameForURL(u *url.URL) string {
	path := strings.ReplaceAll(u.Path, "/", "_")
	path = strings.ReplaceAll(path, "\\", "_")
	return u.Hostname() + path + ".txt"
}

// SourceFromFileName reverses FileNameForURL into a source URL.
func SourceFromFileName(name string) string {
	name = strings.TrimSuffix(name, ".txt")
	return "https://" + strings.ReplaceAll(name, "_", "/")
}
