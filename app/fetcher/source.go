package fetcher

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/Semior001/newsvoice/app/store"
)

// Parser extracts result cards from a search page.
// Implementations are tied to the markup of a particular site and are
// expected to break when the site changes it.
type Parser interface {
	Parse(rd io.Reader) ([]store.SearchResult, error)
}

// Source describes a news site to search at.
type Source struct {
	Name string
	// URLTemplate may contain {query} and {page} placeholders.
	URLTemplate string
	// Paginated sources are requested once per page,
	// the rest are requested only once.
	Paginated bool
	Parser    Parser
}

// URL builds the address of the given result page for the query.
func (s Source) URL(query string, page int) string {
	return strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{page}", strconv.Itoa(page),
	).Replace(s.URLTemplate)
}

// BBC searches at www.bbc.com.
var BBC = Source{
	Name:        "bbc",
	URLTemplate: "https://www.bbc.com/search?q={query}&page={page}",
	Paginated:   true,
	Parser: HTMLParser{
		Card:    `div[class*="sc-c6f6255e-0"]`,
		Title:   "h2",
		Summary: `div[class*="sc-4ea10043-3"]`,
	},
}

// GoogleNews searches with the Google News RSS endpoint.
var GoogleNews = Source{
	Name:        "gnews",
	URLTemplate: "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en",
	Parser:      RSSParser{},
}

// Sources lists known sources by their names.
var Sources = map[string]Source{
	BBC.Name:        BBC,
	GoogleNews.Name: GoogleNews,
}

// SourceByName returns a known source, optionally rebased to another base URL,
// e.g. a mirror or a test server.
func SourceByName(name, baseURL string) (Source, error) {
	src, ok := Sources[name]
	if !ok {
		return Source{}, fmt.Errorf("unknown source %q", name)
	}

	if baseURL == "" {
		return src, nil
	}

	// strip scheme and host of the template, keep the path and the query
	rest := src.URLTemplate[strings.Index(src.URLTemplate, "://")+3:]
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[idx:]
	}

	src.URLTemplate = strings.TrimSuffix(baseURL, "/") + rest
	return src, nil
}
