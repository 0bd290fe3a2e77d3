package pipeline_test

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/faisal1025/Q-AChatBotAirtribe/pipeline"
)

func TestFileNameForURL(t *testing.T) {
	cases := []struct {
		rawURL string
		want   string
	}{
		{"https://example.com/", "example.com_.txt"},
		{"https://example.com/docs/faq", "example.com_docs_faq.txt"},
		{"http://example.com:8080/a/b", "example.com_a_b.txt"},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.rawURL)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.rawURL, err)
		}
		if got := pipeline.FileNameForURL(u); got != tc.want {
			t.Errorf("%s: want %q, got %q", tc.rawURL, tc.want, got)
		}
	}
}

func TestSourceFromFileName(t *testing.T) {
	got := pipeline.SourceFromFileName("example.com_docs_faq.txt")
	want := "https://example.com/docs/faq"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestArtifactStore_WriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := pipeline.NewArtifactStore(dir)

	u, _ := url.Parse("https://example.com/help/contact")
	artifact, err := store.Write(u, "cleaned page text")
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if artifact.Source != "https://example.com/help/contact" {
		t.Errorf("bad source: %q", artifact.Source)
	}
	if filepath.Dir(artifact.Path) != dir {
		t.Errorf("artifact outside content dir: %q", artifact.Path)
	}

	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "cleaned page text" {
		t.Errorf("artifact content mismatch: %q", string(data))
	}
}

func TestArtifactStore_OverwritesSamePage(t *testing.T) {
	dir := t.TempDir()
	store := pipeline.NewArtifactStore(dir)
	u, _ := url.Parse("https://example.com/page")

	if _, err := store.Write(u, "old"); err != nil {
		t.Fatal(err)
	}
	artifact, err := store.Write(u, "new")
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(artifact.Path)
	if string(data) != "new" {
		t.Errorf("want overwrite, got %q", string(data))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("want 1 artifact file, got %d", len(entries))
	}
}
