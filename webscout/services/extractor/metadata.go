package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// pageMeta holds everything read from the head of a page.
type pageMeta struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	SiteName    string
	Author      string
	Published   string
	OGTitle     string
	OGDesc      string
	OGImage     string
	Lang        string
}

// extractMetadata reads title, meta tags, canonical link and OpenGraph
// data. OpenGraph parsing goes through the opengraph library first with
// a goquery fallback for pages with incomplete OG markup.
func extractMetadata(gq *goquery.Document, body string, base *url.URL) pageMeta {
	var m pageMeta

	m.Title = strings.TrimSpace(gq.Find("title").First().Text())
	if m.Title == "" {
		m.Title = strings.TrimSpace(gq.Find("h1").First().Text())
	}
	if m.Title == "" {
		m.Title = "No Title"
	}

	m.Description = metaContent(gq, "meta[name=description]")
	m.Keywords = metaContent(gq, "meta[name=keywords]")
	if href, ok := gq.Find("link[rel=canonical]").First().Attr("href"); ok {
		m.Canonical = resolveURL(base, href)
	}

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(body)); err == nil {
		m.OGTitle = strings.TrimSpace(og.Title)
		m.OGDesc = strings.TrimSpace(og.Description)
		m.SiteName = strings.TrimSpace(og.SiteName)
		if len(og.Images) > 0 && og.Images[0].URL != "" {
			m.OGImage = resolveURL(base, og.Images[0].URL)
		}
	}
	if m.OGTitle == "" {
		m.OGTitle = metaProperty(gq, "og:title")
	}
	if m.OGDesc == "" {
		m.OGDesc = metaProperty(gq, "og:description")
	}
	if m.SiteName == "" {
		m.SiteName = metaProperty(gq, "og:site_name")
	}
	if m.OGImage == "" {
		if src := metaProperty(gq, "og:image"); src != "" {
			m.OGImage = resolveURL(base, src)
		}
	}

	m.Author = metaContent(gq, "meta[name=author]")
	if m.Author == "" {
		m.Author = metaProperty(gq, "article:author")
	}
	m.Published = metaProperty(gq, "article:published_time")

	if lang, ok := gq.Find("html").Attr("lang"); ok {
		m.Lang = strings.TrimSpace(lang)
	}
	if m.Lang == "" {
		m.Lang = metaContent(gq, "meta[http-equiv=content-language]")
	}
	return m
}

func metaContent(gq *goquery.Document, selector string) string {
	v, _ := gq.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func metaProperty(gq *goquery.Document, property string) string {
	return metaContent(gq, fmt.Sprintf("meta[property=%q]", property))
}

// resolveURL resolves ref against base, falling back to ref itself when
// it cannot be parsed.
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// langCodes maps the statistically detected languages this service
// reports by ISO 639-1 code.
var langCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Ita: "it",
	whatlanggo.Por: "pt",
	whatlanggo.Rus: "ru",
	whatlanggo.Jpn: "ja",
	whatlanggo.Kor: "ko",
	whatlanggo.Cmn: "zh",
}

// detectLanguage statistically detects the language of text for pages
// that do not declare one. Languages outside the fixed set are reported
// by their detected code; detection failure reports "unknown".
func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}
	info := whatlanggo.Detect(text)
	if code, ok := langCodes[info.Lang]; ok {
		return code
	}
	if code := whatlanggo.LangToString(info.Lang); code != "" {
		return strings.ToLower(code)
	}
	return "unknown"
}
