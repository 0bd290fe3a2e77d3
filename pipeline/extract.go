package pipeline

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxExtractLen caps the cleaned text of a single page.
const MaxExtractLen = 50_000

// ExtractText strips non-content markup and collapses whitespace,
// returning the visible text of the page.
func ExtractText(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, header, footer, noscript, iframe").Remove()

	text := strings.TrimSpace(doc.Find("body").Text())

	fields := strings.Fields(text)
	text = strings.Join(fields, " ")

	if len(text) > MaxExtractLen {
		text = text[:MaxExtractLen]
	}

	return text
}

// normalizeCrawlURL canonicalizes a URL for the visited set: fragments
// dropped, empty path rewritten to "/" so http://host and http://host/
// name the same page.
func normalizeCrawlURL(u *url.URL) {
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
}

// ExtractLinks returns the absolute same-origin links found in the page,
// each at most once, normalized and fragments stripped.
func ExtractLinks(base *url.URL, html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if abs.Host != base.Host {
			return
		}
		normalizeCrawlURL(abs)
		s := abs.String()
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		links = append(links, s)
	})
	return links
}
