package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Crawler walks a site breadth-first from a seed URL, following only
// same-origin links, and writes one cleaned text artifact per page.
type Crawler struct {
	client    *http.Client
	limiter   *rate.Limiter
	artifacts *ArtifactStore
	userAgent string
	maxBody   int64
	log       *slog.Logger
}

type CrawlerConfig struct {
	Timeout      time.Duration
	RatePerSec   float64
	UserAgent    string
	MaxBodyBytes int64
}

func NewCrawler(artifacts *ArtifactStore, cfg CrawlerConfig, log *slog.Logger) *Crawler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ratePerSec := cfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 2.0
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "QAChatBot-Crawler/1.0"
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	if log == nil {
		log = slog.Default()
	}
	return &Crawler{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), 1),
		artifacts: artifacts,
		userAgent: userAgent,
		maxBody:   maxBody,
		log:       log,
	}
}

// Crawl performs a bounded-depth BFS from seedURL. Depth 0 visits only
// the seed. Per-page failures are logged and skipped; their count is
// returned alongside the artifacts that were written.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxDepth int) ([]Artifact, int, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse seed URL: %w", err)
	}
	if (seed.Scheme != "http" && seed.Scheme != "https") || seed.Host == "" {
		return nil, 0, fmt.Errorf("seed URL must be absolute http(s): %s", seedURL)
	}
	normalizeCrawlURL(seed)

	visited := map[string]struct{}{seed.String(): {}}
	queue := []Page{{URL: seed.String(), Depth: 0}}

	var artifacts []Artifact
	skipped := 0

	for len(queue) > 0 {
		page := queue[0]
		queue = queue[1:]

		if err := c.limiter.Wait(ctx); err != nil {
			return artifacts, skipped, err
		}

		res := FetchPage(ctx, c.client, c.userAgent, c.maxBody, page)
		if res.Err != nil {
			c.log.Warn("fetch failed", "url", page.URL, "err", res.Err)
			skipped++
			continue
		}

		pageURL, err := url.Parse(page.URL)
		if err != nil {
			skipped++
			continue
		}

		text := ExtractText(res.HTMLBody)
		if text == "" {
			c.log.Debug("empty extraction", "url", page.URL)
			skipped++
		} else {
			artifact, err := c.artifacts.Write(pageURL, text)
			if err != nil {
				c.log.Warn("write artifact failed", "url", page.URL, "err", err)
				skipped++
			} else {
				artifacts = append(artifacts, artifact)
			}
		}

		if page.Depth >= maxDepth {
			continue
		}
		for _, link := range ExtractLinks(pageURL, res.HTMLBody) {
			if _, ok := visited[link]; ok {
				continue
			}
			visited[link] = struct{}{}
			queue = append(queue, Page{URL: link, Depth: page.Depth + 1})
		}
	}

	c.log.Info("crawl finished", "seed", seed.String(), "pages", len(artifacts), "skipped", skipped, "dir", c.artifacts.Dir())
	return artifacts, skipped, nil
}
