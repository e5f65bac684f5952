package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/douscan/douscan/internal/textutil"
)

// sectionSelectors is the ordered list of places a vacancy description may
// live; the first selector with non-empty normalized text wins.
var sectionSelectors = []string{
	".b-typo.vacancy-section",
	".b-typo",
	".l-vacancy",
	".vacancy-section",
}

// Description extracts the free-text description from a detail page,
// whitespace-normalized and capped at maxChars runes with a trailing
// ellipsis when cut. No selector matching is not an error: downstream
// treats an empty description as valid.
func Description(html []byte, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse detail page: %w", err)
	}

	for _, sel := range sectionSelectors {
		section := doc.Find(sel).First()
		if section.Length() == 0 {
			continue
		}
		if text := textutil.Clean(blockText(section)); text != "" {
			return textutil.Truncate(text, maxChars), nil
		}
	}
	return "", nil
}

// blockText renders the selection's text with newlines between block-level
// children, mirroring how a browser would break the content.
func blockText(sel *goquery.Selection) string {
	var buf bytes.Buffer
	children := sel.Children()
	if children.Length() == 0 {
		return sel.Text()
	}
	children.Each(func(_ int, child *goquery.Selection) {
		if t := child.Text(); t != "" {
			buf.WriteString(t)
			buf.WriteString("\n")
		}
	})
	if buf.Len() == 0 {
		return sel.Text()
	}
	return buf.String()
}
