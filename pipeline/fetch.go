package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

const defaultMaxBodyBytes = 5 * 1024 * 1024

// FetchPage downloads one page. Non-200 responses and non-HTML content
// types are reported as errors on the result so the crawl can skip them.
func FetchPage(ctx context.Context, client *http.Client, userAgent string, maxBody int64, page Page) FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return FetchResult{Page: page, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return FetchResult{Page: page, Err: fmt.Errorf("fetch: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{Page: page, Err: fmt.Errorf("HTTP %d for %s", resp.StatusCode, page.URL)}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "text/html" {
			return FetchResult{Page: page, Err: fmt.Errorf("non-HTML content type %q for %s", ct, page.URL)}
		}
	}

	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return FetchResult{Page: page, Err: fmt.Errorf("read body: %w", err)}
	}

	return FetchResult{Page: page, HTMLBody: body}
}
