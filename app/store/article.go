package store

import "fmt"

// SearchResult is a single card found on a news search page.
type SearchResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Sentiment is a label of the snippet's tone.
type Sentiment string

// Sentiment labels.
const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// Sentiments lists all labels in display order.
var Sentiments = []Sentiment{Positive, Negative, Neutral}

// Emoji returns a glyph to decorate the label with.
func (s Sentiment) Emoji() string {
	switch s {
	case Positive:
		return "😊"
	case Negative:
		return "😠"
	default:
		return "😐"
	}
}

// Stage names an enrichment step that may fail without failing the article.
type Stage string

// Enrichment stages that are allowed to fail.
const (
	StageKeywords    Stage = "keywords"
	StageTranslation Stage = "translation"
	StageSpeech      Stage = "speech"
)

// StageError describes why the output of a stage is absent.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements error.
func (e StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

// Unwrap returns the underlying error.
func (e StageError) Unwrap() error { return e.Err }

// Article is a search result, enriched with the analysis.
type Article struct {
	SearchResult
	Sentiment   Sentiment    `json:"sentiment"`
	Polarity    float64      `json:"polarity"`
	Keywords    []string     `json:"keywords"`
	Translation string       `json:"translation,omitempty"`
	Audio       []byte       `json:"-"`
	Failures    []StageError `json:"-"`
}

// HasAudio returns true if the speech was synthesized.
func (a Article) HasAudio() bool { return len(a.Audio) > 0 }

// Failed returns the failure of the given stage, if any.
func (a Article) Failed(stage Stage) (StageError, bool) {
	for _, f := range a.Failures {
		if f.Stage == stage {
			return f, true
		}
	}
	return StageError{}, false
}
