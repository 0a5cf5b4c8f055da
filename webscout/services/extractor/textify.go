package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags force line breaks when rendering markup as plain text, so the
// line-based cleanup pass has real lines to work with.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// htmlToText renders a markup fragment as plain text with block elements
// separated by newlines. Script-like subtrees never contribute text.
func htmlToText(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	renderText(&sb, root, false)
	return sb.String()
}

// collectVisibleText renders the subtree at root as plain text while
// skipping noisy subtrees: script-like tags, page furniture tags, and any
// element whose id or class matches the subtree noise vocabulary.
func collectVisibleText(root *html.Node) string {
	var sb strings.Builder
	renderText(&sb, root, true)
	return sb.String()
}

func renderText(sb *strings.Builder, n *html.Node, skipNoise bool) {
	if n.Type == html.ElementNode {
		if strippedTags[n.Data] {
			return
		}
		if skipNoise {
			if skippedTags[n.Data] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key != "id" && attr.Key != "class" {
					continue
				}
				if isNoiseIdentifier(attr.Val) {
					return
				}
			}
		}
		if blockTags[n.Data] {
			sb.WriteByte('\n')
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(sb, c, skipNoise)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}

// cleanText is the final cleanup applied to every extraction candidate:
// whitespace runs collapse to single spaces, blank-line runs to a single
// blank line, lines shorter than minLineLen or matching the boilerplate
// denylist are dropped, and immediately adjacent duplicate lines merge.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	pendingBlank := false
	for _, raw := range lines {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			pendingBlank = true
			continue
		}
		if len(line) < minLineLen {
			continue
		}
		if boilerplateLine.MatchString(line) {
			continue
		}
		if len(kept) > 0 && kept[len(kept)-1] == line {
			continue
		}
		if pendingBlank && len(kept) > 0 {
			kept = append(kept, "")
		}
		pendingBlank = false
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// wordCount counts whitespace-delimited tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// readingTime estimates minutes at 200 words per minute, never below 1.
func readingTime(words int) int {
	mins := (words + 199) / 200
	if mins < 1 {
		return 1
	}
	return mins
}
