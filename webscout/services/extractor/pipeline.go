package extractor

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const strippedSelector = "script, style, noscript, svg, canvas, iframe"

// extractCleanContent runs the layered extraction pipeline over raw
// markup and returns the chosen clean text plus the main-content markup
// it came from (empty when only a text dump was possible).
//
// Strategy order: a documentation-style container wins outright when it
// holds enough prose; otherwise the readability pass and the heuristic
// selector pass compete on word count, and a whole-document dump is the
// last resort. Every candidate goes through the same cleanup, so the
// result never fails, it only degrades.
func extractCleanContent(body string, base *url.URL) (string, string) {
	pre := preprocess(body)

	if text, markup := structuredExtract(pre); text != "" {
		return text, markup
	}

	readText, articleHTML := readabilityExtract(pre, base)
	heurText := heuristicExtract(pre)

	readWords := wordCount(readText)
	heurWords := wordCount(heurText)

	// markup stays empty for text-only winners (heuristic, whole-doc dump)
	// so the markdown rendition never describes content that lost.
	var chosen, markup string
	switch {
	case readWords == 0 && heurWords > 0:
		chosen = heurText
	case heurWords == 0 && readWords > 0:
		chosen, markup = readText, articleHTML
	case heurWords > readWords+heuristicMargin:
		chosen = heurText
	case readWords > 0:
		chosen, markup = readText, articleHTML
	default:
		chosen = cleanText(htmlToText(pre))
	}

	chosen = cleanText(chosen)
	if len(chosen) < minCleanChars {
		return cleanText(htmlToText(pre)), ""
	}
	return chosen, markup
}

// preprocess strips script-like subtrees and boilerplate containers
// before any strategy runs.
func preprocess(body string) string {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	gq.Find(strippedSelector).Remove()
	gq.Find("div, section, aside, article").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		class, _ := s.Attr("class")
		if containsNoise(id, containerNoise) || containsNoise(class, containerNoise) {
			s.Remove()
		}
	})
	out, err := gq.Html()
	if err != nil {
		return body
	}
	return out
}

// structuredExtract targets documentation and book layouts where the
// prose lives in one well-known container: #content, then main, then
// article. The container is accepted only when it holds more than
// structuredMinWords of cleaned text.
func structuredExtract(body string) (string, string) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", ""
	}
	for _, sel := range []string{"#content", "main", "article"} {
		node := gq.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		markup, err := node.Html()
		if err != nil {
			continue
		}
		text := cleanText(htmlToText(markup))
		if wordCount(text) > structuredMinWords {
			return text, markup
		}
	}
	return "", ""
}

// readabilityExtract runs the general-purpose boilerplate-removal pass
// relative to the page's base URL. It returns the cleaned text and the
// extracted article markup.
func readabilityExtract(body string, base *url.URL) (string, string) {
	article, err := readability.FromReader(strings.NewReader(body), base)
	if err != nil {
		return "", ""
	}
	return cleanText(htmlToText(article.Content)), article.Content
}

// heuristicExtract tries the candidate selectors in priority order,
// collecting text recursively while skipping noisy subtrees, and keeps
// the single candidate with the highest word count.
func heuristicExtract(body string) string {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	best := ""
	bestWords := 0
	for _, sel := range candidateSelectors {
		gq.Find(sel).Each(func(_ int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				text := cleanText(collectVisibleText(n))
				if words := wordCount(text); words > bestWords {
					bestWords = words
					best = text
				}
			}
		})
	}
	return best
}

// renderMarkdown converts the main-content markup to markdown for
// LLM-friendly consumption. Failures degrade to an empty string.
func renderMarkdown(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}
