// Package extractor fetches URLs and distills them into structured
// documents through a layered extraction pipeline. Poor extraction
// quality never fails a scrape; only total fetch failure does.
package extractor

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"webscout/webscout/sources/cache"
	"webscout/webscout/utils/admission"
	"webscout/webscout/utils/errs"
	"webscout/webscout/utils/retry"
	"webscout/webscout/utils/types"
)

const (
	maxRedirects    = 10
	fallbackAgent   = "Mozilla/5.0 (compatible; webscout/1.0)"
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 30 * time.Minute
)

// Extractor turns URLs into Documents. The cache, admission gate and
// retry policy are injected so callers can share them with the search
// gateway and tests can substitute deterministic fakes.
type Extractor struct {
	client *http.Client
	cache  *cache.Cache[types.Document]
	gate   *admission.Gate
	policy retry.Policy
	log    *zap.Logger
}

// NewHTTPClient returns a client with the standard redirect cap.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// NewExtractor wires an Extractor. A nil client gets the default one; a
// nil logger is replaced with a no-op.
func NewExtractor(client *http.Client, c *cache.Cache[types.Document], gate *admission.Gate, policy retry.Policy, log *zap.Logger) *Extractor {
	if client == nil {
		client = NewHTTPClient(defaultTimeout)
	}
	if c == nil {
		c = cache.New[types.Document](2000, defaultCacheTTL)
	}
	if gate == nil {
		gate = admission.NewGate(admission.DefaultPermits)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{client: client, cache: c, gate: gate, policy: policy, log: log}
}

// Scrape fetches rawURL and runs the extraction pipeline. It fails with
// an invalid-input error for bad URLs or schemes and a fetch-failed
// error once the retry budget runs out; extraction quality problems fall
// back instead of failing.
func (e *Extractor) Scrape(ctx context.Context, rawURL string) (types.Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return types.Document{}, errs.E(errs.KindInvalidInput, "extractor.scrape", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return types.Document{}, errs.E(errs.KindInvalidInput, "extractor.scrape",
			fmt.Errorf("unsupported scheme %q", parsed.Scheme))
	}

	if doc, ok := e.cache.Get(rawURL); ok {
		if doc.Empty() {
			// Poor-result invalidation: never serve an empty document.
			e.cache.Invalidate(rawURL)
		} else {
			return doc.Clone(), nil
		}
	}

	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return types.Document{}, err
	}
	defer release()

	start := time.Now()
	var doc types.Document
	err = e.policy.Do(ctx, func() error {
		fetched, ferr := e.fetch(ctx, rawURL)
		if ferr != nil {
			return ferr
		}
		doc = e.buildDocument(rawURL, parsed, fetched)
		return nil
	}, errs.TransientHTTP)
	if err != nil {
		return types.Document{}, errs.E(errs.KindFetchFailed, "extractor.scrape", err)
	}

	if doc.Empty() {
		e.log.Info("extraction produced no content, trying simple fallback",
			zap.String("url", rawURL))
		if fallback, ferr := e.scrapeSimple(ctx, rawURL, parsed); ferr == nil {
			doc = fallback
		}
	}

	e.cache.Put(rawURL, doc)
	e.log.Info("scraped",
		zap.String("url", rawURL),
		zap.Int("words", doc.WordCount),
		zap.Duration("took", time.Since(start)))
	return doc.Clone(), nil
}

type fetched struct {
	body        string
	statusCode  int
	contentType string
}

// fetch issues one GET with a rotated user agent and browser-like
// headers. Non-2xx statuses come back as StatusError for the retry
// classifier.
func (e *Extractor) fetch(ctx context.Context, rawURL string) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &errs.StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/html"
	}
	return &fetched{
		body:        string(body),
		statusCode:  resp.StatusCode,
		contentType: contentType,
	}, nil
}

// buildDocument runs the full pipeline over a fetched page.
func (e *Extractor) buildDocument(rawURL string, base *url.URL, f *fetched) types.Document {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(f.body))
	if err != nil {
		// html parsing is error-tolerant; a hard failure means the body
		// is not markup at all, so dump it as-is.
		clean := cleanText(f.body)
		words := wordCount(clean)
		return types.Document{
			URL:                rawURL,
			Title:              "No Title",
			Content:            f.body,
			CleanContent:       clean,
			FetchedAt:          time.Now().UTC(),
			StatusCode:         f.statusCode,
			ContentType:        f.contentType,
			WordCount:          words,
			Language:           detectLanguage(clean),
			ReadingTimeMinutes: readingTime(words),
		}
	}

	meta := extractMetadata(gq, f.body, base)
	clean, markup := extractCleanContent(f.body, base)
	words := wordCount(clean)

	lang := meta.Lang
	if lang == "" {
		lang = detectLanguage(clean)
	}

	return types.Document{
		URL:                rawURL,
		Title:              meta.Title,
		Content:            f.body,
		CleanContent:       clean,
		Markdown:           renderMarkdown(markup),
		MetaDescription:    meta.Description,
		MetaKeywords:       meta.Keywords,
		Headings:           extractHeadings(gq),
		Links:              extractLinks(gq, base),
		Images:             extractImages(gq, base),
		FetchedAt:          time.Now().UTC(),
		StatusCode:         f.statusCode,
		ContentType:        f.contentType,
		WordCount:          words,
		Language:           lang,
		CanonicalURL:       meta.Canonical,
		SiteName:           meta.SiteName,
		Author:             meta.Author,
		PublishedAt:        meta.Published,
		OGTitle:            meta.OGTitle,
		OGDescription:      meta.OGDesc,
		OGImage:            meta.OGImage,
		ReadingTimeMinutes: readingTime(words),
	}
}

// scrapeSimple is the lower-fidelity path for pages where the layered
// pipeline produced nothing: one direct fetch and a whole-document text
// dump through the same cleanup, reusing the shared metadata and
// structure helpers.
func (e *Extractor) scrapeSimple(ctx context.Context, rawURL string, base *url.URL) (types.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.Document{}, err
	}
	req.Header.Set("User-Agent", fallbackAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return types.Document{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Document{}, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/html"
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return types.Document{}, err
	}

	meta := extractMetadata(gq, string(body), base)
	clean := cleanText(htmlToText(string(body)))
	words := wordCount(clean)

	lang := meta.Lang
	if lang == "" {
		lang = detectLanguage(clean)
	}

	return types.Document{
		URL:                rawURL,
		Title:              meta.Title,
		Content:            string(body),
		CleanContent:       clean,
		MetaDescription:    meta.Description,
		MetaKeywords:       meta.Keywords,
		Headings:           extractHeadings(gq),
		Links:              extractLinks(gq, base),
		Images:             extractImages(gq, base),
		FetchedAt:          time.Now().UTC(),
		StatusCode:         resp.StatusCode,
		ContentType:        contentType,
		WordCount:          words,
		Language:           lang,
		ReadingTimeMinutes: readingTime(words),
	}, nil
}
