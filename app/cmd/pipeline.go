package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Semior001/newsvoice/app/analyzer"
	"github.com/Semior001/newsvoice/app/enrich"
	"github.com/Semior001/newsvoice/app/fetcher"
	"github.com/Semior001/newsvoice/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// Pipeline contains options of the news analysis, shared by all commands.
type Pipeline struct {
	Fetcher struct {
		Source      string        `long:"source" env:"SOURCE" choice:"bbc" choice:"gnews" default:"bbc" description:"news search source"`
		BaseURL     string        `long:"base-url" env:"BASE_URL" description:"override base url of the source, e.g. a mirror"`
		MaxPages    int           `long:"max-pages" env:"MAX_PAGES" default:"3" description:"number of search pages to request"`
		Cap         int           `long:"cap" env:"CAP" default:"10" description:"max number of articles to analyze"`
		Concurrency int           `long:"concurrency" env:"CONCURRENCY" default:"3" description:"max number of pages requested at once"`
		Timeout     time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for a single page"`
		UserAgent   string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; newsvoice/1.0; +https://github.com/Semior001/newsvoice)" description:"user agent for search requests"`
	} `group:"fetcher" namespace:"fetcher" env-namespace:"FETCHER"`

	Analyzer struct {
		Workers int `long:"workers" env:"WORKERS" default:"4" description:"number of articles enriched at once"`
	} `group:"analyzer" namespace:"analyzer" env-namespace:"ANALYZER"`

	Sentiment struct {
		Threshold float64 `long:"threshold" env:"THRESHOLD" default:"0.1" description:"polarity below which the article is neutral, 0 for strict mode"`
	} `group:"sentiment" namespace:"sentiment" env-namespace:"SENTIMENT"`

	Keywords struct {
		Top int `long:"top" env:"TOP" default:"3" description:"number of keywords per article"`
	} `group:"keywords" namespace:"keywords" env-namespace:"KEYWORDS"`

	Voice struct {
		Lang     string `long:"lang" env:"LANG" default:"hi" description:"ISO 639-1 code of the translation language"`
		MaxChars int    `long:"max-chars" env:"MAX_CHARS" default:"500" description:"max number of characters to translate"`
	} `group:"voice" namespace:"voice" env-namespace:"VOICE"`

	OpenAI struct {
		Token     string        `long:"token" env:"TOKEN" description:"OpenAI token"`
		BaseURL   string        `long:"base-url" env:"BASE_URL" description:"OpenAI API base url"`
		Model     string        `long:"model" env:"MODEL" default:"gpt-4o-mini" description:"chat model for translations"`
		MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens of a translation"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for OpenAI calls"`
		TTSModel  string        `long:"tts-model" env:"TTS_MODEL" default:"tts-1" description:"speech model"`
		TTSVoice  string        `long:"tts-voice" env:"TTS_VOICE" default:"alloy" description:"speech voice"`
		CacheSize int           `long:"cache-size" env:"CACHE_SIZE" default:"1000" description:"max number of cached translations"`
	} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`
}

// service is an analyzer with the translator, whose cache stats are
// reported to admins.
type service struct {
	*analyzer.Service
	translator *enrich.ChatGPT
}

// build wires the analysis pipeline.
func (p Pipeline) build(lg *slog.Logger) (service, error) {
	src, err := fetcher.SourceByName(p.Fetcher.Source, p.Fetcher.BaseURL)
	if err != nil {
		return service{}, fmt.Errorf("find source: %w", err)
	}

	httpLogger := logx.LoggingRoundTripper(lg.With(slog.String("prefix", "http")), logx.RoundTripperOpts{
		Level:         slog.LevelDebug,
		SecretHeaders: []string{"Authorization"},
	})

	searchClient := requester.New(http.Client{},
		middleware.Header("User-Agent", p.Fetcher.UserAgent),
		middleware.MaxConcurrent(p.Fetcher.Concurrency),
		httpLogger,
	).Client()

	f := fetcher.New(lg.With(slog.String("prefix", "fetcher")), searchClient, fetcher.Opts{
		Source:      src,
		Cap:         p.Fetcher.Cap,
		Concurrency: p.Fetcher.Concurrency,
		Timeout:     p.Fetcher.Timeout,
	})

	classifier, err := enrich.NewClassifier(enrich.NewLexicon(), p.Sentiment.Threshold)
	if err != nil {
		return service{}, fmt.Errorf("make sentiment classifier: %w", err)
	}

	openaiClient := enrich.NewOpenAIClient(
		lg.With(slog.String("prefix", "openai")),
		requester.New(http.Client{Timeout: p.OpenAI.Timeout}, httpLogger).Client(),
		p.OpenAI.Token,
		p.OpenAI.BaseURL,
	)

	translator := enrich.NewChatGPT(
		lg.With(slog.String("prefix", "chatgpt")),
		openaiClient,
		p.OpenAI.Model,
		p.OpenAI.MaxTokens,
		p.OpenAI.CacheSize,
	)

	voice, err := enrich.NewVoice(
		lg.With(slog.String("prefix", "voice")),
		translator,
		enrich.NewOpenAITTS(openaiClient, p.OpenAI.TTSModel, p.OpenAI.TTSVoice),
		enrich.VoiceOpts{MaxChars: p.Voice.MaxChars, Timeout: p.OpenAI.Timeout},
	)
	if err != nil {
		return service{}, fmt.Errorf("make voice: %w", err)
	}

	svc, err := analyzer.NewService(
		lg.With(slog.String("prefix", "analyzer")),
		f,
		classifier,
		enrich.NewKeywordRanker(),
		voice,
		analyzer.Opts{
			MaxPages:    p.Fetcher.MaxPages,
			Workers:     p.Analyzer.Workers,
			TopKeywords: p.Keywords.Top,
			Language:    p.Voice.Lang,
		},
	)
	if err != nil {
		return service{}, fmt.Errorf("make analyzer: %w", err)
	}

	return service{Service: svc, translator: translator}, nil
}
