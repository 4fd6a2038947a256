package fetcher

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Semior001/newsvoice/app/store"
	"github.com/mmcdole/gofeed"
)

// HTMLParser extracts cards from an HTML page with CSS selectors.
type HTMLParser struct {
	Card    string // selector of a result card
	Title   string // selector of the title inside the card
	Summary string // selector of the summary inside the card
}

// Parse extracts cards from an HTML page.
// Cards with missing elements are returned with empty fields.
func (p HTMLParser) Parse(rd io.Reader) ([]store.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(rd)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var res []store.SearchResult
	doc.Find(p.Card).Each(func(_ int, card *goquery.Selection) {
		res = append(res, store.SearchResult{
			Title:   sanitize(card.Find(p.Title).First().Text()),
			Summary: sanitize(card.Find(p.Summary).First().Text()),
		})
	})

	return res, nil
}

// RSSParser extracts cards from an RSS or Atom feed.
type RSSParser struct{}

// Parse extracts feed items, the summary is the item's description
// with markup stripped.
func (RSSParser) Parse(rd io.Reader) ([]store.SearchResult, error) {
	feed, err := gofeed.NewParser().Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	res := make([]store.SearchResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		res = append(res, store.SearchResult{
			Title:   sanitize(item.Title),
			Summary: stripHTML(item.Description),
		})
	}

	return res, nil
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return sanitize(s)
	}
	return sanitize(doc.Text())
}

var spaces = regexp.MustCompile(`\s+`)

func sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
