// Package extract pulls listing cards and descriptions out of raw markup
// with goquery CSS selectors, so the parsing logic is testable against
// fixture pages without any network I/O.
package extract

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/douscan/douscan/internal/textutil"
	"github.com/douscan/douscan/internal/vacancy"
)

const (
	cardSelector   = ".vacancy"
	titleSelector  = "a.vt"
	anchorFallback = "a.vt[href]"
)

// Cards parses one listings page into cards in document order. The second
// return value reports whether the anchor fallback produced the result,
// which happens when the card wrapper class is absent from the markup.
// Zero cards is a valid result meaning "no more listings".
func Cards(html []byte, baseURL string) ([]vacancy.Card, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, false, fmt.Errorf("parse list page: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, false, fmt.Errorf("parse base url: %w", err)
	}

	cards := primaryCards(doc, base)
	if len(cards) > 0 {
		return cards, false, nil
	}

	cards = fallbackCards(doc, base)
	return cards, len(cards) > 0, nil
}

func primaryCards(doc *goquery.Document, base *url.URL) []vacancy.Card {
	var out []vacancy.Card
	doc.Find(cardSelector).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(titleSelector).First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		out = append(out, vacancy.Card{
			Title:   textutil.Clean(link.Text()),
			Company: textutil.Clean(item.Find(".company").First().Text()),
			Cities:  textutil.Clean(item.Find(".cities").First().Text()),
			URL:     resolved,
		})
	})
	return out
}

// fallbackCards scans title anchors directly and recovers company/cities
// from each anchor's enclosing element.
func fallbackCards(doc *goquery.Document, base *url.URL) []vacancy.Card {
	var out []vacancy.Card
	doc.Find(anchorFallback).Each(func(_ int, link *goquery.Selection) {
		title := textutil.Clean(link.Text())
		href, _ := link.Attr("href")
		resolved := resolveURL(base, href)
		if title == "" || resolved == "" {
			return
		}
		wrapper := link.Parent()
		out = append(out, vacancy.Card{
			Title:   title,
			Company: textutil.Clean(wrapper.Find(".company").First().Text()),
			Cities:  textutil.Clean(wrapper.Find(".cities").First().Text()),
			URL:     resolved,
		})
	})
	return out
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(textutil.Clean(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
