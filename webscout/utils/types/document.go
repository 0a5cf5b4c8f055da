package types

import (
	"slices"
	"time"
)

// Heading is a document heading in document order, level 1 through 6.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link pairs an absolute URL with its anchor text.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Image pairs an absolute image source with its alt and title attributes.
type Image struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// Document is the structured result of scraping a URL. Content holds the
// raw fetched markup, CleanContent the extracted main text, and Markdown
// a markdown rendition of the main-content markup when one was found.
type Document struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CleanContent    string    `json:"clean_content"`
	Markdown        string    `json:"markdown,omitempty"`
	MetaDescription string    `json:"meta_description"`
	MetaKeywords    string    `json:"meta_keywords"`
	Headings        []Heading `json:"headings"`
	Links           []Link    `json:"links"`
	Images          []Image   `json:"images"`
	FetchedAt       time.Time `json:"timestamp"`
	StatusCode      int       `json:"status_code"`
	ContentType     string    `json:"content_type"`
	WordCount       int       `json:"word_count"`
	Language        string    `json:"language"`

	CanonicalURL       string `json:"canonical_url,omitempty"`
	SiteName           string `json:"site_name,omitempty"`
	Author             string `json:"author,omitempty"`
	PublishedAt        string `json:"published_at,omitempty"`
	OGTitle            string `json:"og_title,omitempty"`
	OGDescription      string `json:"og_description,omitempty"`
	OGImage            string `json:"og_image,omitempty"`
	ReadingTimeMinutes int    `json:"reading_time_minutes,omitempty"`
}

// Clone returns a copy whose slice fields share no backing arrays with
// d, so callers can mutate the result without touching cached state.
func (d Document) Clone() Document {
	d.Headings = slices.Clone(d.Headings)
	d.Links = slices.Clone(d.Links)
	d.Images = slices.Clone(d.Images)
	return d
}

// Empty reports whether extraction produced no usable text. Cached
// documents in this state are treated as absent and evicted on read.
func (d *Document) Empty() bool {
	if d.WordCount == 0 {
		return true
	}
	for _, r := range d.CleanContent {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}
