package enrich

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

//go:embed data/translate.tmpl
var prompt string

var promptTmpl = template.Must(template.New("prompt").Parse(prompt))

//go:generate moq -out mock_openai_client.go . OpenAIClient

// OpenAIClient is interface for OpenAI client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateSpeech(context.Context, openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// NewOpenAIClient makes a client to the OpenAI API.
// Empty baseURL stands for the default one.
func NewOpenAIClient(lg *slog.Logger, cl *http.Client, token, baseURL string) OpenAIClient {
	config := openai.DefaultConfig(token)
	config.HTTPClient = cl
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &loggingClient{log: lg, cl: openai.NewClientWithConfig(config)}
}

// ChatGPT translates texts with OpenAI chat completions.
type ChatGPT struct {
	log       *slog.Logger
	cl        OpenAIClient
	model     string
	maxTokens int
	cache     cache.Cache[string, string]
}

// NewChatGPT creates new ChatGPT translator.
func NewChatGPT(lg *slog.Logger, cl OpenAIClient, model string, maxTokens, cacheSize int) *ChatGPT {
	return &ChatGPT{
		log:       lg,
		cl:        cl,
		model:     model,
		maxTokens: maxTokens,
		cache: cache.NewCache[string, string]().
			WithLRU().
			WithMaxKeys(cacheSize),
	}
}

// CacheStat returns stats of the translations cache.
func (s *ChatGPT) CacheStat() cache.Stats { return s.cache.Stat() }

// Translate translates the text into the language.
func (s *ChatGPT) Translate(ctx context.Context, text, lang string) (string, error) {
	key := lang + ":" + text
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	buf := &strings.Builder{}
	err := promptTmpl.Execute(buf, struct{ Language, Text string }{Language: languageName(lang), Text: text})
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buf.String()},
		},
	}

	resp, err := s.cl.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", errors.New("empty translation")
	}

	s.cache.Set(key, result, 0)
	return result, nil
}

var languages = map[string]string{
	"hi": "Hindi", "bn": "Bengali", "ta": "Tamil", "te": "Telugu", "mr": "Marathi",
	"ur": "Urdu", "en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"ru": "Russian", "zh": "Chinese", "ja": "Japanese",
}

func languageName(code string) string {
	if name, ok := languages[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	l.log.DebugCtx(ctx, "sending request to chatGPT", slog.String("model", req.Model))
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugCtx(ctx, "response received from chatGPT",
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Any("err", err))
	return resp, err
}

func (l *loggingClient) CreateSpeech(
	ctx context.Context,
	req openai.CreateSpeechRequest,
) (openai.RawResponse, error) {
	l.log.DebugCtx(ctx, "sending request to speech API", slog.Int("input_len", len(req.Input)))
	resp, err := l.cl.CreateSpeech(ctx, req)
	l.log.DebugCtx(ctx, "response received from speech API", slog.Any("err", err))
	return resp, err
}
