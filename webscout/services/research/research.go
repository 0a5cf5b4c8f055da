// Package research is the thin consumer that fans a query out into
// search followed by bounded parallel scrapes of the top results.
package research

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webscout/webscout/services/extractor"
	"webscout/webscout/services/search"
	"webscout/webscout/utils/types"
)

// DefaultTopN is how many of the top-ranked results get scraped.
const DefaultTopN = 5

// Researcher aggregates whatever subset of scrapes succeeded. One
// failing fetch never cancels or fails the others.
type Researcher struct {
	gateway   *search.Gateway
	extractor *extractor.Extractor
	log       *zap.Logger
}

// Report is the aggregated outcome of one research run.
type Report struct {
	ID        string               `json:"id"`
	Query     string               `json:"query"`
	Results   []types.SearchResult `json:"results"`
	Documents []types.Document     `json:"documents"`
	Failed    []string             `json:"failed,omitempty"`
}

func NewResearcher(gateway *search.Gateway, ex *extractor.Extractor, log *zap.Logger) *Researcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Researcher{gateway: gateway, extractor: ex, log: log}
}

// Research searches for query and scrapes the top results concurrently.
// Per-URL failures are logged and recorded in Report.Failed; only the
// search itself can fail the call.
func (r *Researcher) Research(ctx context.Context, query string, topN int) (*Report, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	results, err := r.gateway.Search(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:      uuid.NewString(),
		Query:   query,
		Results: results,
	}

	n := topN
	if n > len(results) {
		n = len(results)
	}

	docs := make([]*types.Document, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			doc, err := r.extractor.Scrape(ctx, target)
			if err != nil {
				r.log.Warn("scrape failed during research",
					zap.String("run", report.ID),
					zap.String("url", target),
					zap.Error(err))
				return
			}
			docs[i] = &doc
		}(i, results[i].URL)
	}
	wg.Wait()

	for i, doc := range docs {
		if doc != nil {
			report.Documents = append(report.Documents, *doc)
		} else {
			report.Failed = append(report.Failed, results[i].URL)
		}
	}

	r.log.Info("research completed",
		zap.String("run", report.ID),
		zap.String("query", query),
		zap.Int("results", len(report.Results)),
		zap.Int("documents", len(report.Documents)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}
