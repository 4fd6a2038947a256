// Package fetcher searches news sites for snippets about a query.
package fetcher

import (
	"context"
	"crypto/sha1" //nolint:gosec // used as a fingerprint, not for security
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Semior001/newsvoice/app/store"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// PageError is returned when a search page could not be fetched or parsed.
type PageError struct {
	Page int
	URL  string
	Err  error
}

// Error implements error.
func (e *PageError) Error() string { return fmt.Sprintf("page %d (%s): %v", e.Page, e.URL, e.Err) }

// Unwrap returns the underlying error.
func (e *PageError) Unwrap() error { return e.Err }

// Opts defines parameters of the search.
type Opts struct {
	Source Source
	// Cap limits the number of returned results, zero means no limit.
	Cap int
	// Concurrency limits the number of pages requested at once.
	Concurrency int
	// Timeout limits a request of a single page.
	Timeout time.Duration
}

// Fetcher requests search pages and extracts results from them.
type Fetcher struct {
	log *slog.Logger
	cl  *http.Client
	Opts
}

// New makes a new Fetcher.
func New(lg *slog.Logger, cl *http.Client, opts Opts) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Fetcher{log: lg, cl: cl, Opts: opts}
}

// Fetch searches for the query on the first maxPages pages of the source.
// Pages that failed contribute no results and are reported in pageErrs,
// cards without title or summary are dropped, duplicates are skipped.
// Empty result means nothing was found.
func (f *Fetcher) Fetch(ctx context.Context, query string, maxPages int) (res []store.SearchResult, pageErrs []error) {
	pages := maxPages
	if !f.Source.Paginated && pages > 1 {
		pages = 1
	}

	res = []store.SearchResult{}
	if pages <= 0 {
		return res, nil
	}

	cards := make([][]store.SearchResult, pages)
	errs := make([]error, pages)

	ewg := &errgroup.Group{}
	ewg.SetLimit(f.Concurrency)
	for page := 0; page < pages; page++ {
		page := page
		ewg.Go(func() error {
			cards[page], errs[page] = f.page(ctx, query, page)
			return nil
		})
	}
	_ = ewg.Wait() // page errors are collected separately

	for _, err := range errs {
		if err != nil {
			f.log.WarnCtx(ctx, "failed to fetch search page", slog.Any("err", err))
			pageErrs = append(pageErrs, err)
		}
	}

	seen := map[string]struct{}{}
	for page := range cards {
		for _, card := range cards[page] {
			if f.Cap > 0 && len(res) >= f.Cap {
				return res, pageErrs
			}

			card.Title, card.Summary = sanitize(card.Title), sanitize(card.Summary)
			if card.Title == "" || card.Summary == "" {
				f.log.DebugCtx(ctx, "dropped incomplete card",
					slog.Int("page", page),
					slog.String("title", card.Title))
				continue
			}

			fp := fingerprint(card)
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}

			res = append(res, card)
		}
	}

	return res, pageErrs
}

func (f *Fetcher) page(ctx context.Context, query string, page int) ([]store.SearchResult, error) {
	u := f.Source.URL(query, page)
	wrap := func(err error) error { return &PageError{Page: page, URL: u, Err: err} }

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, wrap(fmt.Errorf("build request: %w", err))
	}

	resp, err := f.cl.Do(req)
	if err != nil {
		return nil, wrap(fmt.Errorf("do request: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return nil, wrap(fmt.Errorf("bad status code: %d", resp.StatusCode))
	}

	cards, err := f.Source.Parser.Parse(resp.Body)
	if err != nil {
		return nil, wrap(fmt.Errorf("extract cards: %w", err))
	}

	f.log.DebugCtx(ctx, "fetched search page",
		slog.Int("page", page),
		slog.Int("cards", len(cards)))

	return cards, nil
}

// fingerprint identifies the card regardless of case and spacing.
func fingerprint(card store.SearchResult) string {
	h := sha1.New() //nolint:gosec // see import
	_, _ = h.Write([]byte(strings.ToLower(card.Title)))
	_, _ = h.Write([]byte{'\n'})
	_, _ = h.Write([]byte(strings.ToLower(card.Summary)))
	return hex.EncodeToString(h.Sum(nil))
}
