// Package analyzer searches for news about a company and enriches every
// found snippet with its sentiment, keywords and a voiced translation.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Semior001/newsvoice/app/enrich"
	"github.com/Semior001/newsvoice/app/store"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyQuery is returned when there is nothing to search for.
var ErrEmptyQuery = errors.New("empty query")

// Fetcher searches for news snippets.
type Fetcher interface {
	Fetch(ctx context.Context, query string, maxPages int) ([]store.SearchResult, []error)
}

// Classifier labels the sentiment of a text.
type Classifier interface {
	Classify(text string) (store.Sentiment, float64)
}

// KeywordExtractor extracts salient phrases of a text.
type KeywordExtractor interface {
	Extract(text string, topN int) ([]string, error)
}

// Synthesizer voices a translation of a text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (enrich.Speech, error)
}

// ProgressFunc is called after each enriched article.
// Calls are serialized and done grows monotonically up to total.
type ProgressFunc func(done, total int)

// Opts defines parameters of the analysis.
type Opts struct {
	MaxPages    int
	Workers     int
	TopKeywords int
	Language    string
}

// Service runs the analysis.
type Service struct {
	log        *slog.Logger
	fetcher    Fetcher
	classifier Classifier
	keywords   KeywordExtractor
	voice      Synthesizer
	Opts
}

// NewService makes a new Service. All stages are required.
func NewService(
	lg *slog.Logger,
	fetcher Fetcher,
	classifier Classifier,
	keywords KeywordExtractor,
	voice Synthesizer,
	opts Opts,
) (*Service, error) {
	switch {
	case fetcher == nil:
		return nil, errors.New("no fetcher")
	case classifier == nil:
		return nil, errors.New("no sentiment classifier")
	case keywords == nil:
		return nil, errors.New("no keyword extractor")
	case voice == nil:
		return nil, errors.New("no synthesizer")
	}

	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TopKeywords <= 0 {
		opts.TopKeywords = enrich.DefaultTopKeywords
	}
	if opts.Language == "" {
		opts.Language = enrich.DefaultLanguage
	}

	return &Service{
		log:        lg,
		fetcher:    fetcher,
		classifier: classifier,
		keywords:   keywords,
		voice:      voice,
		Opts:       opts,
	}, nil
}

// Analyze searches for news about the query and enriches each of them.
// Failures of single pages or single stages do not fail the analysis,
// they are reported in the Report. Articles keep the order of the search.
func (s *Service) Analyze(ctx context.Context, query string, progress ProgressFunc) (Report, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Report{State: StateIdle}, ErrEmptyQuery
	}

	start := time.Now()
	rep := Report{Query: query, State: StateFetching}
	s.log.DebugCtx(ctx, "searching for articles", slog.String("query", query))

	results, pageErrs := s.fetcher.Fetch(ctx, query, s.MaxPages)
	rep.PageErrors = pageErrs
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("fetch articles: %w", err)
	}

	if len(results) == 0 {
		rep.State = StateDoneEmpty
		rep.Elapsed = time.Since(start)
		s.log.InfoCtx(ctx, "no articles found",
			slog.String("query", query),
			slog.Int("failed_pages", len(pageErrs)))
		return rep, nil
	}

	rep.State = StateEnriching
	rep.Articles = make([]store.Article, len(results))

	mu := &sync.Mutex{}
	done := 0

	ewg, ectx := errgroup.WithContext(ctx)
	ewg.SetLimit(s.Workers)
	for i := range results {
		i := i
		ewg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}

			rep.Articles[i] = s.enrich(ectx, results[i])

			mu.Lock()
			defer mu.Unlock()
			done++
			if progress != nil {
				progress(done, len(results))
			}
			return nil
		})
	}

	if err := ewg.Wait(); err != nil {
		return rep, fmt.Errorf("enrich articles: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("enrich articles: %w", err)
	}

	rep.State = StateDone
	rep.Elapsed = time.Since(start)

	s.log.InfoCtx(ctx, "analysis complete",
		slog.String("query", query),
		slog.Int("articles", len(rep.Articles)),
		slog.Int("failed_pages", len(pageErrs)),
		slog.Int("without_audio", len(rep.Articles)-countAudio(rep.Articles)),
		slog.Duration("elapsed", rep.Elapsed))

	return rep, nil
}

// enrich runs all stages over the snippet concurrently.
// Stage failures are recorded in the article.
func (s *Service) enrich(ctx context.Context, res store.SearchResult) store.Article {
	a := store.Article{SearchResult: res}

	var (
		keywords        []string
		speech          enrich.Speech
		kwErr, voiceErr error
		wg              sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer recoverStage(store.StageKeywords, &kwErr)
		keywords, kwErr = s.keywords.Extract(res.Summary, s.TopKeywords)
	}()
	go func() {
		defer wg.Done()
		defer recoverStage(store.StageSpeech, &voiceErr)
		speech, voiceErr = s.voice.Synthesize(ctx, res.Summary, s.Language)
	}()

	a.Sentiment, a.Polarity = s.classifier.Classify(res.Summary)

	wg.Wait()

	a.Keywords = keywords
	if kwErr != nil {
		a.Keywords = []string{}
		a.Failures = append(a.Failures, asStageError(store.StageKeywords, kwErr))
		s.log.DebugCtx(ctx, "no keywords", slog.String("title", res.Title), slog.Any("err", kwErr))
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if len(a.Keywords) > s.TopKeywords {
		a.Keywords = a.Keywords[:s.TopKeywords]
	}

	a.Translation = speech.Translation
	if voiceErr != nil {
		a.Failures = append(a.Failures, asStageError(store.StageSpeech, voiceErr))
		s.log.WarnCtx(ctx, "audio is unavailable", slog.String("title", res.Title), slog.Any("err", voiceErr))
		return a
	}
	a.Audio = speech.Audio

	return a
}

func recoverStage(stage store.Stage, err *error) {
	if r := recover(); r != nil {
		*err = store.StageError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}

func asStageError(stage store.Stage, err error) store.StageError {
	var se store.StageError
	if errors.As(err, &se) {
		return se
	}
	return store.StageError{Stage: stage, Err: err}
}

func countAudio(articles []store.Article) int {
	cnt := 0
	for _, a := range articles {
		if a.HasAudio() {
			cnt++
		}
	}
	return cnt
}
