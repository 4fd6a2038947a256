package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Semior001/newsvoice/app/enrich"
	"github.com/Semior001/newsvoice/app/store"
	"github.com/Semior001/newsvoice/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var lg = slog.New(logx.NoOp())

type fetcherFunc func(ctx context.Context, query string, maxPages int) ([]store.SearchResult, []error)

func (f fetcherFunc) Fetch(ctx context.Context, query string, maxPages int) ([]store.SearchResult, []error) {
	return f(ctx, query, maxPages)
}

type translatorFunc func(ctx context.Context, text, lang string) (string, error)

func (f translatorFunc) Translate(ctx context.Context, text, lang string) (string, error) {
	return f(ctx, text, lang)
}

type speakerFunc func(ctx context.Context, text, lang string) ([]byte, error)

func (f speakerFunc) Speak(ctx context.Context, text, lang string) ([]byte, error) {
	return f(ctx, text, lang)
}

type enrichCalls struct {
	translate int32
	speak     int32
}

func newService(t *testing.T, f fetcherFunc, sp speakerFunc, calls *enrichCalls) *Service {
	t.Helper()

	if calls == nil {
		calls = &enrichCalls{}
	}

	classifier, err := enrich.NewClassifier(enrich.NewLexicon(), enrich.DefaultThreshold)
	require.NoError(t, err)

	if sp == nil {
		sp = func(_ context.Context, text, _ string) ([]byte, error) { return []byte("mp3:" + text), nil }
	}

	voice, err := enrich.NewVoice(lg,
		translatorFunc(func(_ context.Context, text, lang string) (string, error) {
			atomic.AddInt32(&calls.translate, 1)
			return lang + ":" + text, nil
		}),
		speakerFunc(func(ctx context.Context, text, lang string) ([]byte, error) {
			atomic.AddInt32(&calls.speak, 1)
			return sp(ctx, text, lang)
		}),
		enrich.VoiceOpts{MaxChars: enrich.DefaultMaxChars, Timeout: time.Second},
	)
	require.NoError(t, err)

	svc, err := NewService(lg, f, classifier, enrich.NewKeywordRanker(), voice, Opts{
		MaxPages:    3,
		Workers:     4,
		TopKeywords: 3,
		Language:    "hi",
	})
	require.NoError(t, err)
	return svc
}

var mixed = []store.SearchResult{
	{Title: "Microsoft posts record quarter", Summary: "Microsoft profits soar on strong cloud growth."},
	{Title: "Microsoft hit by outage", Summary: "A terrible outage caused losses and angry customers."},
}

func TestService_Analyze_PositiveAndNegative(t *testing.T) {
	svc := newService(t, func(_ context.Context, query string, maxPages int) ([]store.SearchResult, []error) {
		assert.Equal(t, "Microsoft", query)
		assert.Equal(t, 3, maxPages)
		return mixed, nil
	}, nil, nil)

	rep, err := svc.Analyze(context.Background(), " Microsoft ", nil)
	require.NoError(t, err)

	assert.Equal(t, StateDone, rep.State)
	assert.Equal(t, "Microsoft", rep.Query)
	require.Len(t, rep.Articles, 2)

	assert.Equal(t, mixed[0], rep.Articles[0].SearchResult)
	assert.Equal(t, store.Positive, rep.Articles[0].Sentiment)
	assert.Equal(t, mixed[1], rep.Articles[1].SearchResult)
	assert.Equal(t, store.Negative, rep.Articles[1].Sentiment)

	for _, a := range rep.Articles {
		assert.NotEmpty(t, a.Keywords)
		assert.LessOrEqual(t, len(a.Keywords), 3)
		assert.Equal(t, "hi:"+a.Summary, a.Translation)
		assert.Equal(t, []byte("mp3:hi:"+a.Summary), a.Audio)
		assert.Empty(t, a.Failures)
	}

	assert.Equal(t, map[store.Sentiment]int{store.Positive: 1, store.Negative: 1}, rep.Counts())
}

func TestService_Analyze_NothingFound(t *testing.T) {
	calls := &enrichCalls{}
	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		return []store.SearchResult{}, []error{errors.New("page 1 failed")}
	}, nil, calls)

	rep, err := svc.Analyze(context.Background(), "Microsoft", nil)
	require.NoError(t, err)
	assert.Equal(t, StateDoneEmpty, rep.State)
	assert.True(t, rep.Empty())
	assert.Empty(t, rep.Articles)
	assert.Len(t, rep.PageErrors, 1)
	assert.Zero(t, atomic.LoadInt32(&calls.translate))
	assert.Zero(t, atomic.LoadInt32(&calls.speak))
}

func TestService_Analyze_SynthesisFailed(t *testing.T) {
	calls := &enrichCalls{}
	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		return mixed, nil
	}, func(_ context.Context, text, _ string) ([]byte, error) {
		if strings.Contains(text, "outage") {
			return nil, errors.New("tts is down")
		}
		return []byte("mp3"), nil
	}, calls)

	rep, err := svc.Analyze(context.Background(), "Microsoft", nil)
	require.NoError(t, err)
	assert.Equal(t, StateDone, rep.State)
	require.Len(t, rep.Articles, 2)

	assert.Equal(t, []byte("mp3"), rep.Articles[0].Audio)
	assert.Empty(t, rep.Articles[0].Failures)

	failed := rep.Articles[1]
	assert.Nil(t, failed.Audio)
	assert.False(t, failed.HasAudio())
	assert.Equal(t, "hi:"+failed.Summary, failed.Translation, "translation succeeded")
	f, ok := failed.Failed(store.StageSpeech)
	require.True(t, ok)
	assert.ErrorContains(t, f, "tts is down")
	assert.Equal(t, store.Negative, failed.Sentiment, "other stages are not affected")
	assert.NotEmpty(t, failed.Keywords)

	assert.Equal(t, 1, rep.Failures(store.StageSpeech))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls.translate))
}

func TestService_Analyze_EmptyQuery(t *testing.T) {
	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		t.Fatal("fetcher must not be called")
		return nil, nil
	}, nil, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		rep, err := svc.Analyze(context.Background(), q, nil)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Equal(t, StateIdle, rep.State)
	}
}

func TestService_Analyze_OrderAndProgress(t *testing.T) {
	const n = 15

	results := make([]store.SearchResult, n)
	for i := range results {
		results[i] = store.SearchResult{
			Title:   fmt.Sprintf("title %d", i),
			Summary: fmt.Sprintf("summary number %d about growth", i),
		}
	}

	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		return results, nil
	}, func(_ context.Context, text, _ string) ([]byte, error) {
		// earlier items finish later
		var idx int
		_, _ = fmt.Sscanf(strings.TrimPrefix(text, "hi:summary number "), "%d", &idx)
		time.Sleep(time.Duration(n-idx) * time.Millisecond)
		return []byte(text), nil
	}, nil)

	var (
		mu       sync.Mutex
		progress []int
	)
	rep, err := svc.Analyze(context.Background(), "q", func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, n, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)

	require.Len(t, rep.Articles, n)
	for i, a := range rep.Articles {
		assert.Equal(t, results[i], a.SearchResult)
		assert.Equal(t, []byte("hi:"+results[i].Summary), a.Audio)
	}

	require.Len(t, progress, n)
	for i, done := range progress {
		assert.Equal(t, i+1, done)
	}
}

func TestService_Analyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		return mixed, nil
	}, func(ctx context.Context, _, _ string) ([]byte, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)

	_, err := svc.Analyze(ctx, "Microsoft", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Analyze_KeywordsFailed(t *testing.T) {
	svc := newService(t, func(context.Context, string, int) ([]store.SearchResult, []error) {
		return []store.SearchResult{{Title: "Numbers", Summary: "2024, 2025 - 42"}}, nil
	}, nil, nil)

	rep, err := svc.Analyze(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Len(t, rep.Articles, 1)

	a := rep.Articles[0]
	assert.NotNil(t, a.Keywords)
	assert.Empty(t, a.Keywords)
	_, ok := a.Failed(store.StageKeywords)
	assert.True(t, ok)
	assert.True(t, a.HasAudio())
	assert.Equal(t, store.Neutral, a.Sentiment)
}

func TestNewService_Invalid(t *testing.T) {
	_, err := NewService(lg, nil, nil, nil, nil, Opts{})
	assert.Error(t, err)
}
