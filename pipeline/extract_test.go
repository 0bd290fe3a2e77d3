package pipeline_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/faisal1025/Q-AChatBotAirtribe/pipeline"
)

var sampleHTML = []byte(`<html><body>
  <script>var x = 1;</script>
  <style>.a { color: red; }</style>
  <nav>Menu</nav>
  <main><p>Our support team answers billing questions within one business day.</p></main>
  <footer>Copyright</footer>
</body></html>`)

func TestExtract_StripsScriptAndStyle(t *testing.T) {
	text := pipeline.ExtractText(sampleHTML)
	if strings.Contains(text, "var x") {
		t.Error("script content not stripped")
	}
	if strings.Contains(text, "color: red") {
		t.Error("style content not stripped")
	}
}

func TestExtract_StripsNavHeaderFooter(t *testing.T) {
	text := pipeline.ExtractText(sampleHTML)
	if strings.Contains(text, "Menu") {
		t.Error("nav content not stripped")
	}
	if strings.Contains(text, "Copyright") {
		t.Error("footer content not stripped")
	}
}

func TestExtract_PreservesMainContent(t *testing.T) {
	text := pipeline.ExtractText(sampleHTML)
	if !strings.Contains(text, "billing questions") {
		t.Error("main content missing")
	}
}

func TestExtract_CollapsesWhitespace(t *testing.T) {
	text := pipeline.ExtractText([]byte("<html><body><p>hello\n\n\t  world</p></body></html>"))
	if text != "hello world" {
		t.Errorf("want %q, got %q", "hello world", text)
	}
}

func TestExtract_TruncatesLongContent(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("a ", 60000) + "</p></body></html>"
	text := pipeline.ExtractText([]byte(long))
	if len(text) > pipeline.MaxExtractLen {
		t.Errorf("text length %d exceeds max %d", len(text), pipeline.MaxExtractLen)
	}
}

func TestExtract_EdgeCases(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		empty bool
	}{
		{"empty body", []byte("<html><body></body></html>"), true},
		{"only script", []byte("<html><body><script>alert(1)</script></body></html>"), true},
		{"plain text", []byte("<html><body>hello world</body></html>"), false},
		{"no body tag", []byte("<p>hello</p>"), false},
		{"nil input", nil, true},
		{"empty bytes", []byte{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pipeline.ExtractText(tc.input)
			if tc.empty && got != "" {
				t.Errorf("expected empty, got %q", got)
			}
			if !tc.empty && got == "" {
				t.Error("expected non-empty, got empty")
			}
		})
	}
}

func TestExtractLinks_SameOriginOnly(t *testing.T) {
	base, _ := url.Parse("https://example.com/docs/")
	html := []byte(`<html><body>
		<a href="/about">About</a>
		<a href="pricing">Pricing</a>
		<a href="https://example.com/contact">Contact</a>
		<a href="https://other.com/page">Offsite</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="#section">Anchor</a>
	</body></html>`)

	links := pipeline.ExtractLinks(base, html)

	want := []string{
		"https://example.com/about",
		"https://example.com/docs/pricing",
		"https://example.com/contact",
	}
	if len(links) != len(want) {
		t.Fatalf("want %d links, got %d: %v", len(want), len(links), links)
	}
	for i, w := range want {
		if links[i] != w {
			t.Errorf("link %d: want %q, got %q", i, w, links[i])
		}
	}
}

func TestExtractLinks_NormalizesEmptyPath(t *testing.T) {
	base, _ := url.Parse("https://example.com/docs")
	html := []byte(`<a href="https://example.com">home</a><a href="/">root</a>`)
	links := pipeline.ExtractLinks(base, html)
	if len(links) != 1 || links[0] != "https://example.com/" {
		t.Fatalf(`want ["https://example.com/"], got %v`, links)
	}
}

func TestExtractLinks_Deduplicates(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	html := []byte(`<a href="/a">one</a><a href="/a">two</a><a href="/a#frag">three</a>`)
	links := pipeline.ExtractLinks(base, html)
	if len(links) != 1 {
		t.Fatalf("want 1 link, got %d: %v", len(links), links)
	}
}
