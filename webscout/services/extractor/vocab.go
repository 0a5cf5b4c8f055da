package extractor

import (
	"regexp"
	"strings"
)

// Extraction vocabulary. These tables are data, not logic: vocab_test.go
// exercises them independently of the pipeline so the corpus can grow
// without touching extraction code.

// userAgents is the rotation pool for outbound fetches.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// strippedTags are removed wholesale before any extraction strategy runs.
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"canvas":   true,
	"iframe":   true,
}

// containerNoise drives whole-block removal of div/section/aside/article
// elements during preprocessing.
var containerNoise = []string{
	"ads", "advert", "sponsor", "promo", "cookie", "banner", "modal",
	"subscribe", "newsletter", "share", "social", "sidebar", "comments",
	"related", "breadcrumb", "pagination",
}

// subtreeNoise flags noisy subtrees during recursive text collection.
// Plain "ad" would also match words like "header", so ad markers carry
// their separators; the hyphen/underscore variants are checked in
// isNoiseIdentifier.
var subtreeNoise = []string{
	"ads", "advert", "adsense", "adunit", "ad-slot", "ad_container", "adbox",
	"sponsor", "promo", "cookie", "consent", "banner", "modal",
	"subscribe", "newsletter", "share", "social", "sidebar", "comments",
	"related", "breadcrumb", "pagination", "nav", "footer", "header",
	"hero", "toolbar",
}

// skippedTags are ignored entirely during recursive text collection.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"canvas":   true,
	"iframe":   true,
	"form":     true,
	"header":   true,
	"footer":   true,
	"nav":      true,
	"aside":    true,
}

// candidateSelectors are tried in priority order by the heuristic pass.
var candidateSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"[itemprop=articleBody]",
	".entry-content",
	".post-content",
	".article-content",
	"#content",
	"#main",
	".content",
	".post",
	".article",
}

// boilerplateLine matches leftover page furniture that survives block
// removal: share prompts, cookie notices, subscription calls and the like.
var boilerplateLine = regexp.MustCompile(`(?i)subscribe|sign up|cookie|accept all|advert|sponsor|newsletter|\bshare\b|related articles|^comments?$|read more|continue reading|terms of service|privacy policy`)

// Empirically chosen thresholds, carried over unchanged from the tuning
// corpus rather than re-derived.
const (
	// structuredMinWords is the minimum for accepting a
	// documentation-style container outright.
	structuredMinWords = 50
	// heuristicMargin is the word-count lead the heuristic pass needs to
	// beat the readability pass.
	heuristicMargin = 20
	// minCleanChars is the floor under which the whole-document dump
	// replaces the chosen candidate.
	minCleanChars = 80
	// minLineLen drops noise lines from cleaned text.
	minLineLen = 3
)

// containsNoise reports whether ident matches any marker by substring.
func containsNoise(ident string, markers []string) bool {
	if ident == "" {
		return false
	}
	ident = strings.ToLower(ident)
	for _, m := range markers {
		if strings.Contains(ident, m) {
			return true
		}
	}
	return false
}

// isNoiseIdentifier reports whether an id or class value marks a noisy
// subtree.
func isNoiseIdentifier(ident string) bool {
	if containsNoise(ident, subtreeNoise) {
		return true
	}
	ident = strings.ToLower(ident)
	return strings.Contains(ident, "-ad") || strings.Contains(ident, "ad-") ||
		strings.Contains(ident, "_ad") || strings.Contains(ident, "ad_")
}
