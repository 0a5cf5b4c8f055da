// Package search queries a SearXNG-compatible federated search
// aggregator and normalizes its ranked results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"webscout/webscout/sources/cache"
	"webscout/webscout/utils/admission"
	"webscout/webscout/utils/errs"
	"webscout/webscout/utils/retry"
	"webscout/webscout/utils/types"
)

// DefaultEngines is the combined engine set used when neither config nor
// per-call overrides name one.
var DefaultEngines = []string{"duckduckgo", "google", "bing"}

const defaultCacheTTL = 10 * time.Minute

// Gateway is the search half of the acquisition engine. The cache,
// admission gate and retry policy are injected; the gate is shared with
// the content extractor.
type Gateway struct {
	baseURL string
	engines []string
	client  *http.Client
	cache   *cache.Cache[[]types.SearchResult]
	gate    *admission.Gate
	policy  retry.Policy
	log     *zap.Logger
}

// NewGateway wires a Gateway against the aggregator at baseURL.
func NewGateway(baseURL string, engines []string, client *http.Client, c *cache.Cache[[]types.SearchResult], gate *admission.Gate, policy retry.Policy, log *zap.Logger) *Gateway {
	if len(engines) == 0 {
		engines = DefaultEngines
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if c == nil {
		c = cache.New[[]types.SearchResult](2000, defaultCacheTTL)
	}
	if gate == nil {
		gate = admission.NewGate(admission.DefaultPermits)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		engines: engines,
		client:  client,
		cache:   c,
		gate:    gate,
		policy:  policy,
		log:     log,
	}
}

// Search runs query against the aggregator with optional per-call
// overrides. Results are deduplicated by URL keeping the first
// occurrence, so relative order still reflects aggregator ranking.
func (g *Gateway) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.SearchResult, error) {
	key := opts.CacheKey(query)
	if cached, ok := g.cache.Get(key); ok {
		g.log.Debug("search cache hit", zap.String("query", query))
		return slices.Clone(cached), nil
	}

	release, err := g.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	endpoint := g.baseURL + "/search?" + g.buildParams(query, opts).Encode()

	var upstream searxngResponse
	err = g.policy.Do(ctx, func() error {
		return g.fetchResults(ctx, endpoint, &upstream)
	}, errs.TransientHTTP)
	if err != nil {
		var se *errs.StatusError
		if errors.As(err, &se) && se.StatusCode < 500 {
			return nil, errs.E(errs.KindUpstreamRejected, "search.gateway", err)
		}
		return nil, errs.E(errs.KindUpstreamUnavailable, "search.gateway", err)
	}

	results := normalize(upstream.Results)
	g.log.Info("search completed",
		zap.String("query", query),
		zap.Int("upstream", len(upstream.Results)),
		zap.Int("results", len(results)))

	g.cache.Put(key, results)
	return slices.Clone(results), nil
}

// buildParams maps defaults and overrides onto the aggregator's query
// parameters.
func (g *Gateway) buildParams(query string, opts *types.SearchOptions) url.Values {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("engines", strings.Join(g.engines, ","))
	params.Set("categories", "general")
	params.Set("language", "en")
	params.Set("safesearch", "0")
	params.Set("time_range", "")
	params.Set("pageno", "1")
	if opts == nil {
		return params
	}
	if len(opts.Engines) > 0 {
		params.Set("engines", strings.Join(opts.Engines, ","))
	}
	if len(opts.Categories) > 0 {
		params.Set("categories", strings.Join(opts.Categories, ","))
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}
	if opts.SafeSearch != nil {
		level := *opts.SafeSearch
		if level < 0 || level > 2 {
			level = 0
		}
		params.Set("safesearch", strconv.Itoa(level))
	}
	if opts.TimeRange != "" {
		params.Set("time_range", opts.TimeRange)
	}
	if opts.Page > 0 {
		params.Set("pageno", strconv.Itoa(opts.Page))
	}
	return params
}

// searxng response shapes; only the fields the gateway consumes.
type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}

// fetchResults issues one GET against the aggregator. Non-2xx statuses
// come back as StatusError; a malformed body is a plain error so the
// classifier treats it as transient (the upstream may be mid-restart).
func (g *Gateway) fetchResults(ctx context.Context, endpoint string, out *searxngResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "webscout/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &errs.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	*out = searxngResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode aggregator response: %w", err)
	}
	return nil
}

// normalize deduplicates by URL keeping the first occurrence; aggregator
// order is rank, so surviving entries keep their relative positions.
func normalize(raw []searxngResult) []types.SearchResult {
	seen := make(map[string]bool, len(raw))
	out := make([]types.SearchResult, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, types.SearchResult{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.Content,
			Engine:  r.Engine,
			Score:   r.Score,
		})
	}
	return out
}
