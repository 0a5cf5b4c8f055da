package types

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchResult is a single ranked result from the federated aggregator.
// Order across a result slice is significant: it reflects aggregator
// ranking with duplicates removed.
type SearchResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Engine  string  `json:"engine,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// SearchOptions override the gateway defaults for a single query.
// Zero values mean "use default".
type SearchOptions struct {
	Engines    []string `json:"engines,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Language   string   `json:"language,omitempty"`
	SafeSearch *int     `json:"safesearch,omitempty"` // 0, 1 or 2
	TimeRange  string   `json:"time_range,omitempty"` // day, week, month, year
	Page       int      `json:"page,omitempty"`
}

// CacheKey serializes the query plus every override field into the
// composite cache key. A missing override serializes as empty, so two
// calls that differ only in override values never collide.
func (o *SearchOptions) CacheKey(query string) string {
	if o == nil {
		return fmt.Sprintf("q=%s|default", query)
	}
	safe := ""
	if o.SafeSearch != nil {
		safe = strconv.Itoa(*o.SafeSearch)
	}
	page := "1"
	if o.Page > 0 {
		page = strconv.Itoa(o.Page)
	}
	return fmt.Sprintf("q=%s|eng=%s|cat=%s|lang=%s|safe=%s|time=%s|page=%s",
		query,
		strings.Join(o.Engines, ","),
		strings.Join(o.Categories, ","),
		o.Language,
		safe,
		o.TimeRange,
		page,
	)
}
