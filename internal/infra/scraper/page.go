// Package scraper extracts structured article content from news pages.
// It walks ordered fallback selector chains with goquery and falls back to
// the Readability algorithm before giving up on a body.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptopress/internal/resilience/circuitbreaker"
	"cryptopress/internal/resilience/retry"
	"cryptopress/internal/usecase/generate"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/sony/gobreaker"
)

// browserUserAgent mirrors a desktop browser; several news sites serve bot
// agents a stripped page without the article body.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	// ErrNoTitle is returned when no title can be extracted.
	ErrNoTitle = errors.New("scraper: no title found")
	// ErrNoBody is returned when no body text can be extracted.
	ErrNoBody = errors.New("scraper: no article body found")
)

// Config holds scraper tunables.
type Config struct {
	// Timeout bounds each page fetch.
	Timeout time.Duration

	// MinParagraphChars filters caption and boilerplate noise out of the
	// article body. Paragraphs at or below this length are dropped.
	MinParagraphChars int

	// MaxBodySize caps the response body read.
	MaxBodySize int64
}

// DefaultConfig returns production scraper defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		MinParagraphChars: 20,
		MaxBodySize:       5 << 20,
	}
}

// PageScraper implements generate.PageScraper over goquery selector chains.
type PageScraper struct {
	client         *http.Client
	cfg            Config
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config

	now func() time.Time
}

// New creates a PageScraper with the given HTTP client.
func New(client *http.Client, cfg Config) *PageScraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MinParagraphChars <= 0 {
		cfg.MinParagraphChars = DefaultConfig().MinParagraphChars
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	return &PageScraper{
		client:         client,
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.PageScrapeConfig()),
		retryConfig:    retry.ScrapeConfig(),
		now:            time.Now,
	}
}

// Scrape fetches the page and extracts structured content. It never returns
// a partially filled result: a missing title or body fails the whole call.
func (s *PageScraper) Scrape(ctx context.Context, pageURL string) (*generate.ScrapedContent, error) {
	var content *generate.ScrapedContent

	retryErr := retry.WithBackoff(ctx, s.retryConfig, func() error {
		cbResult, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return s.doScrape(ctx, pageURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("page scrape circuit breaker open, request rejected",
					slog.String("service", "page-scrape"),
					slog.String("url", pageURL),
					slog.String("state", s.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		content = cbResult.(*generate.ScrapedContent)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return content, nil
}

// doScrape performs the fetch and extraction without retry or breaker.
func (s *PageScraper) doScrape(ctx context.Context, pageURL string) (*generate.ScrapedContent, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	base := resp.Request.URL
	if base == nil {
		base, _ = url.Parse(pageURL)
	}

	title := extractTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTitle, pageURL)
	}

	body := s.extractBody(doc)
	if body == "" {
		body = s.readabilityBody(htmlBytes, base, pageURL)
	}
	if body == "" {
		body = metaContent(doc, `meta[property="og:description"]`, `meta[name="description"]`)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoBody, pageURL)
	}

	return &generate.ScrapedContent{
		Title:        title,
		Body:         body,
		HeroImageURL: extractHeroImage(doc, base),
		Author:       extractAuthor(doc, base.Hostname()),
		PublishedAt:  s.extractPublishedAt(doc),
		SourceURL:    pageURL,
	}, nil
}

// extractTitle tries the page heading first, then the social metadata title.
func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return metaContent(doc, `meta[property="og:title"]`)
}

// bodyContainers are recognized article body containers, tried in order
// before falling back to every paragraph under the article element.
var bodyContainers = []string{
	"article .article-body",
	"article .content-body",
	".article-content",
	`[class*="articleBody"]`,
}

// extractBody walks the body selector chain, keeping paragraphs above the
// noise threshold.
func (s *PageScraper) extractBody(doc *goquery.Document) string {
	for _, sel := range bodyContainers {
		if body := s.collectParagraphs(doc.Find(sel + " p")); body != "" {
			return body
		}
	}
	return s.collectParagraphs(doc.Find("article p"))
}

func (s *PageScraper) collectParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, p *goquery.Selection) {
		txt := strings.TrimSpace(p.Text())
		if len(txt) > s.cfg.MinParagraphChars {
			parts = append(parts, txt)
		}
	})
	return strings.Join(parts, "\n\n")
}

// readabilityBody runs the Readability algorithm over the raw HTML when the
// selector chains come up empty. Sites with unusual markup still yield a
// body this way.
func (s *PageScraper) readabilityBody(htmlBytes []byte, base *url.URL, pageURL string) string {
	article, err := readability.FromReader(bytes.NewReader(htmlBytes), base)
	if err != nil {
		slog.Debug("readability extraction failed",
			slog.String("url", pageURL),
			slog.Any("error", err))
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// extractHeroImage tries social metadata, then in-article images, then a
// class hint. Relative URLs are resolved against the page URL.
func extractHeroImage(doc *goquery.Document, base *url.URL) string {
	if src := metaContent(doc, `meta[property="og:image"]`); src != "" {
		return resolveURL(base, src)
	}
	if src, ok := doc.Find("article img").First().Attr("src"); ok && src != "" {
		return resolveURL(base, src)
	}
	if src, ok := doc.Find(`img[class*="featured"]`).First().Attr("src"); ok && src != "" {
		return resolveURL(base, src)
	}
	return ""
}

// extractAuthor tries author metadata, rel=author links, then any element
// whose class hints "author", defaulting to the source host label.
func extractAuthor(doc *goquery.Document, fallback string) string {
	if a := metaContent(doc, `meta[name="author"]`); a != "" {
		return a
	}
	if a := strings.TrimSpace(doc.Find(`a[rel="author"]`).First().Text()); a != "" {
		return a
	}
	if a := strings.TrimSpace(doc.Find(`[class*="author"]`).First().Text()); a != "" {
		return a
	}
	return fallback
}

// extractPublishedAt tries the article publish metadata, then any
// time[datetime] element, defaulting to the current time.
func (s *PageScraper) extractPublishedAt(doc *goquery.Document) time.Time {
	if raw := metaContent(doc, `meta[property="article:published_time"]`); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	if raw, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return s.now()
}

// metaContent returns the first non-empty content attribute among selectors.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// resolveURL makes src absolute against the page URL when it is relative.
func resolveURL(base *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	if base == nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
