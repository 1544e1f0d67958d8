package extraction

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var htmlMarkup = regexp.MustCompile(`(?i)<(html|body|article|div|p|br|section|span|h[1-6])[\s/>]`)

// blockElements end a line of readable text.
const blockElements = "p, div, section, article, header, footer, aside, blockquote, pre, " +
	"h1, h2, h3, h4, h5, h6, li, dt, dd, tr, td, th, figcaption, br, hr"

// looksLikeHTML reports whether s carries block-level markup.
func looksLikeHTML(s string) bool {
	return htmlMarkup.MatchString(s)
}

// HTMLToText returns the readable text of an HTML document, one block per
// line, or "" when readability finds nothing.
func HTMLToText(documentHTML, pageURL string) string {
	documentHTML = strings.TrimSpace(documentHTML)
	if documentHTML == "" {
		return ""
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(markBlocks(documentHTML)), parsedURL)
	if err != nil {
		return ""
	}
	return normalizeLines(article.TextContent)
}

// markBlocks surrounds the text of every block element with newlines so
// adjacent blocks do not run together once markup is stripped.
func markBlocks(documentHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentHTML))
	if err != nil {
		return documentHTML
	}

	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	out, err := doc.Html()
	if err != nil {
		return documentHTML
	}
	return out
}

// normalizeLines collapses runs of whitespace inside each line and drops
// blank lines.
func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
