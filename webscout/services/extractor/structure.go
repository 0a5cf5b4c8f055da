package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webscout/webscout/utils/types"
)

// extractHeadings returns every h1 through h6 with non-empty trimmed
// text, in document order.
func extractHeadings(gq *goquery.Document) []types.Heading {
	var out []types.Heading
	gq.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || len(s.Nodes) == 0 {
			return
		}
		tag := s.Nodes[0].Data
		if len(tag) != 2 {
			return
		}
		out = append(out, types.Heading{Level: int(tag[1] - '0'), Text: text})
	})
	return out
}

// extractLinks returns every anchor resolved to an absolute URL,
// de-duplicated by resolved URL with the first occurrence kept.
func extractLinks(gq *goquery.Document, base *url.URL) []types.Link {
	seen := make(map[string]bool)
	var out []types.Link
	gq.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, types.Link{URL: abs, Text: strings.TrimSpace(s.Text())})
	})
	return out
}

// extractImages returns every image resolved to an absolute source,
// de-duplicated, with alt and title defaulting to empty strings.
func extractImages(gq *goquery.Document, base *url.URL) []types.Image {
	seen := make(map[string]bool)
	var out []types.Image
	gq.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		abs := resolveURL(base, src)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		alt, _ := s.Attr("alt")
		title, _ := s.Attr("title")
		out = append(out, types.Image{Src: abs, Alt: alt, Title: title})
	})
	return out
}
