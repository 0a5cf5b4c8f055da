package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"webscout/webscout/utils/admission"
	"webscout/webscout/utils/errs"
	"webscout/webscout/utils/retry"
	"webscout/webscout/utils/types"
)

func fastPolicy() retry.Policy {
	return retry.Policy{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  250 * time.Millisecond,
	}
}

func newTestExtractor() *Extractor {
	return NewExtractor(nil, nil, nil, fastPolicy(), nil)
}

const articlePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Migrating a Fleet of Batch Jobs</title>
  <meta name="description" content="Notes from moving four hundred batch jobs to a new scheduler.">
  <meta name="keywords" content="batch, scheduler, migration">
  <meta property="og:site_name" content="Infra Notes">
  <link rel="canonical" href="/posts/batch-migration">
</head>
<body>
  <div class="ad-banner">Buy widgets now at unbelievable prices</div>
  <div id="content">
    <h1>Migrating a Fleet of Batch Jobs</h1>
    <p>Last quarter we moved four hundred nightly batch jobs from a cron
    fleet onto a central scheduler. The first lesson was that job owners
    rarely know their own dependencies, so we spent two weeks building a
    dependency map before touching a single job definition.</p>
    <h2>What Went Wrong</h2>
    <p>The second lesson was about retries. Jobs that had silently failed
    for months suddenly started alerting, and the on-call rotation was
    flooded until we tuned the failure thresholds per job class rather
    than globally across the whole fleet.</p>
    <p>By the end of the migration the completion rate was higher than it
    had ever been under cron, and the dependency map became the most
    requested internal document of the quarter.</p>
    <a href="/posts/batch-migration">Permalink</a>
    <a href="/posts/batch-migration">Same link again</a>
    <a href="/about">About</a>
    <img src="/img/dag.png" alt="dependency graph">
    <img src="/img/dag.png" alt="duplicate">
  </div>
</body>
</html>`

func TestScrapeRejectsInvalidURLs(t *testing.T) {
	e := newTestExtractor()
	ctx := context.Background()

	_, err := e.Scrape(ctx, "://missing-scheme")
	require.True(t, errs.IsKind(err, errs.KindInvalidInput))

	_, err = e.Scrape(ctx, "ftp://files.test/archive")
	require.True(t, errs.IsKind(err, errs.KindInvalidInput))

	_, err = e.Scrape(ctx, "file:///etc/passwd")
	require.True(t, errs.IsKind(err, errs.KindInvalidInput))
}

func TestScrapeExtractsMainContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	doc, err := newTestExtractor().Scrape(context.Background(), srv.URL+"/posts/batch-migration")
	require.NoError(t, err)

	require.Equal(t, "Migrating a Fleet of Batch Jobs", doc.Title)
	require.Contains(t, doc.CleanContent, "four hundred nightly batch jobs")
	require.NotContains(t, doc.CleanContent, "Buy widgets now")
	require.Greater(t, doc.WordCount, 50)
	require.GreaterOrEqual(t, doc.ReadingTimeMinutes, 1)
	require.Equal(t, http.StatusOK, doc.StatusCode)
	require.Equal(t, "en", doc.Language)
	require.Contains(t, doc.MetaDescription, "four hundred batch jobs")
	require.Equal(t, "batch, scheduler, migration", doc.MetaKeywords)
	require.Equal(t, "Infra Notes", doc.SiteName)
	require.Equal(t, srv.URL+"/posts/batch-migration", doc.CanonicalURL)
	require.NotEmpty(t, doc.Markdown)
	require.False(t, doc.FetchedAt.IsZero())
}

func TestScrapeHeadingsInDocumentOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	doc, err := newTestExtractor().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, doc.Headings, 2)
	require.Equal(t, 1, doc.Headings[0].Level)
	require.Equal(t, "Migrating a Fleet of Batch Jobs", doc.Headings[0].Text)
	require.Equal(t, 2, doc.Headings[1].Level)
	require.Equal(t, "What Went Wrong", doc.Headings[1].Text)
}

func TestScrapeDedupesLinksAndImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	doc, err := newTestExtractor().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Len(t, doc.Links, 2)
	require.Equal(t, srv.URL+"/posts/batch-migration", doc.Links[0].URL)
	require.Equal(t, "Permalink", doc.Links[0].Text, "first occurrence wins")
	require.Equal(t, srv.URL+"/about", doc.Links[1].URL)

	require.Len(t, doc.Images, 1)
	require.Equal(t, srv.URL+"/img/dag.png", doc.Images[0].Src)
	require.Equal(t, "dependency graph", doc.Images[0].Alt)
}

func TestScrapeCachesDocuments(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	e := newTestExtractor()
	ctx := context.Background()

	first, err := e.Scrape(ctx, srv.URL)
	require.NoError(t, err)
	second, err := e.Scrape(ctx, srv.URL)
	require.NoError(t, err)

	require.Equal(t, int32(1), calls.Load(), "second scrape should come from cache")
	require.Equal(t, first.CleanContent, second.CleanContent)
	require.Equal(t, first.FetchedAt, second.FetchedAt)
}

func TestScrapeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	doc, err := newTestExtractor().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
	require.Greater(t, doc.WordCount, 0)
}

func TestScrapeNotFoundFailsWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestExtractor().Scrape(context.Background(), srv.URL)
	require.True(t, errs.IsKind(err, errs.KindFetchFailed))
	require.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestScrapePersistentServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestExtractor().Scrape(context.Background(), srv.URL)
	require.True(t, errs.IsKind(err, errs.KindFetchFailed))
	require.Greater(t, calls.Load(), int32(1))
}

func TestScrapeRetriesClientTimeouts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	e := NewExtractor(client, nil, nil, fastPolicy(), nil)

	doc, err := e.Scrape(context.Background(), srv.URL)
	require.NoError(t, err, "a slow upstream response is transient, not terminal")
	require.Equal(t, int32(3), calls.Load())
	require.Greater(t, doc.WordCount, 0)
}

func TestScrapeReturnsCopies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	e := newTestExtractor()
	ctx := context.Background()

	first, err := e.Scrape(ctx, srv.URL)
	require.NoError(t, err)
	first.Links[0].Text = "mutated-by-caller"
	first.Headings[0].Text = "also mutated"

	second, err := e.Scrape(ctx, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Permalink", second.Links[0].Text, "caller mutation must not leak into the cache")
	require.Equal(t, "Migrating a Fleet of Batch Jobs", second.Headings[0].Text)
}

func TestConcurrentScrapesShareGateAndAgree(t *testing.T) {
	var inflight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if now <= p || peak.CompareAndSwap(p, now) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	const permits = 2
	e := NewExtractor(nil, nil, admission.NewGate(permits), fastPolicy(), nil)

	docs := make([]types.Document, 6)
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := e.Scrape(context.Background(), srv.URL)
			require.NoError(t, err)
			docs[i] = doc
		}(i)
	}
	wg.Wait()

	require.LessOrEqual(t, peak.Load(), int32(permits))
	for i := range docs {
		docs[i].FetchedAt = time.Time{}
	}
	for i := 1; i < len(docs); i++ {
		require.Equal(t, docs[0], docs[i], "concurrent scrapes of one URL must agree")
	}
}

func TestScrapeEmptyPageFallsBackAndNeverCachesUsefully(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `<html><head><script>var x = 1;</script></head><body><script>render();</script></body></html>`)
	}))
	defer srv.Close()

	e := newTestExtractor()
	ctx := context.Background()

	doc, err := e.Scrape(ctx, srv.URL)
	require.NoError(t, err, "empty extraction degrades, it does not fail")
	require.True(t, doc.Empty())
	require.Equal(t, int32(2), calls.Load(), "pipeline fetch plus simple fallback")

	_, err = e.Scrape(ctx, srv.URL)
	require.NoError(t, err)
	require.Equal(t, int32(4), calls.Load(), "empty cached document counts as a miss")
}
