package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Semior001/newsvoice/app/store"
	"golang.org/x/exp/slog"
)

// DefaultLanguage is the language of the synthesized speech.
const DefaultLanguage = "hi"

// DefaultMaxChars bounds the text sent to the translator.
const DefaultMaxChars = 500

// ErrEmptyText is returned when there is nothing to voice.
var ErrEmptyText = errors.New("empty text")

// Translator translates text to the language, given by its ISO 639-1 code.
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

// Speaker synthesizes speech of the text in the given language.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) ([]byte, error)
}

// VoiceOpts defines parameters of the speech synthesis.
type VoiceOpts struct {
	MaxChars int
	// Timeout limits each external call: translation and synthesis.
	Timeout time.Duration
}

// Speech is a translated snippet with its audio.
type Speech struct {
	Translation string
	Audio       []byte // mp3
}

// Voice translates snippets and reads them aloud.
type Voice struct {
	log        *slog.Logger
	translator Translator
	speaker    Speaker
	VoiceOpts
}

// NewVoice makes a new Voice.
func NewVoice(lg *slog.Logger, tr Translator, sp Speaker, opts VoiceOpts) (*Voice, error) {
	if tr == nil {
		return nil, errors.New("no translator")
	}
	if sp == nil {
		return nil, errors.New("no speaker")
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	return &Voice{log: lg, translator: tr, speaker: sp, VoiceOpts: opts}, nil
}

// Synthesize translates the text and synthesizes the speech of the translation.
// The returned error is always a store.StageError, naming the failed stage.
// Audio is either complete or absent.
func (v *Voice) Synthesize(ctx context.Context, text, lang string) (Speech, error) {
	text = truncate(strings.TrimSpace(text), v.MaxChars)
	if text == "" {
		return Speech{}, store.StageError{Stage: store.StageTranslation, Err: ErrEmptyText}
	}

	translated, err := v.translate(ctx, text, lang)
	if err != nil {
		return Speech{}, store.StageError{Stage: store.StageTranslation, Err: err}
	}

	audio, err := v.speak(ctx, translated, lang)
	if err != nil {
		return Speech{Translation: translated}, store.StageError{Stage: store.StageSpeech, Err: err}
	}

	return Speech{Translation: translated, Audio: audio}, nil
}

func (v *Voice) translate(ctx context.Context, text, lang string) (string, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	res, err := v.translator.Translate(ctx, text, lang)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", lang, err)
	}

	if res = strings.TrimSpace(res); res == "" {
		return "", fmt.Errorf("translate to %s: %w", lang, ErrEmptyText)
	}

	return res, nil
}

func (v *Voice) speak(ctx context.Context, text, lang string) ([]byte, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	audio, err := v.speaker.Speak(ctx, text, lang)
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}

	if len(audio) == 0 {
		return nil, errors.New("speak: no audio produced")
	}

	v.log.DebugCtx(ctx, "synthesized speech", slog.Int("bytes", len(audio)))
	return audio, nil
}

func (v *Voice) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, v.Timeout)
}

// truncate cuts the string to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}

	cnt := 0
	for i := range s {
		if cnt == n {
			return s[:i]
		}
		cnt++
	}

	return s
}
