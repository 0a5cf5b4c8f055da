package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyNilOptions(t *testing.T) {
	var opts *SearchOptions
	require.Equal(t, "q=golang|default", opts.CacheKey("golang"))
}

func TestCacheKeySerializesEveryField(t *testing.T) {
	safe := 1
	opts := &SearchOptions{
		Engines:    []string{"duckduckgo", "brave"},
		Categories: []string{"news"},
		Language:   "de",
		SafeSearch: &safe,
		TimeRange:  "week",
		Page:       3,
	}
	require.Equal(t,
		"q=golang|eng=duckduckgo,brave|cat=news|lang=de|safe=1|time=week|page=3",
		opts.CacheKey("golang"))
}

func TestCacheKeyZeroOptions(t *testing.T) {
	opts := &SearchOptions{}
	require.Equal(t, "q=golang|eng=|cat=|lang=|safe=|time=|page=1", opts.CacheKey("golang"))
}

func TestCacheKeyDistinguishesOverrides(t *testing.T) {
	base := (&SearchOptions{}).CacheKey("q")
	withLang := (&SearchOptions{Language: "fr"}).CacheKey("q")
	withPage := (&SearchOptions{Page: 2}).CacheKey("q")

	require.NotEqual(t, base, withLang)
	require.NotEqual(t, base, withPage)
	require.NotEqual(t, withLang, withPage)
}

func TestDocumentCloneDoesNotAlias(t *testing.T) {
	d := Document{
		Headings: []Heading{{Level: 1, Text: "Intro"}},
		Links:    []Link{{URL: "https://a.test", Text: "a"}},
		Images:   []Image{{Src: "https://a.test/x.png"}},
	}
	c := d.Clone()
	c.Headings[0].Text = "changed"
	c.Links[0].Text = "changed"
	c.Images[0].Src = "changed"

	require.Equal(t, "Intro", d.Headings[0].Text)
	require.Equal(t, "a", d.Links[0].Text)
	require.Equal(t, "https://a.test/x.png", d.Images[0].Src)
}

func TestDocumentEmpty(t *testing.T) {
	var d Document
	require.True(t, d.Empty())

	d.CleanContent = "   \n\t "
	require.True(t, d.Empty())

	d.CleanContent = "real words here"
	d.WordCount = 3
	require.False(t, d.Empty())
}
