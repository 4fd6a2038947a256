package enrich

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAITTS synthesizes mp3 speech with the OpenAI speech API.
// The model detects the language from the text itself.
type OpenAITTS struct {
	cl    OpenAIClient
	model openai.SpeechModel
	voice openai.SpeechVoice
}

// NewOpenAITTS makes a new OpenAITTS.
func NewOpenAITTS(cl OpenAIClient, model, voice string) *OpenAITTS {
	return &OpenAITTS{cl: cl, model: openai.SpeechModel(model), voice: openai.SpeechVoice(voice)}
}

// Speak returns the whole mp3 stream of the spoken text.
func (s *OpenAITTS) Speak(ctx context.Context, text, _ string) ([]byte, error) {
	resp, err := s.cl.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}

	return audio, nil
}
