// Package enrich contains stages that annotate a news snippet:
// sentiment, keywords, translation and speech.
package enrich

import (
	"errors"
	"fmt"

	"github.com/Semior001/newsvoice/app/store"
)

// DefaultThreshold is the half-width of the neutral zone around zero polarity.
const DefaultThreshold = 0.1

// Scorer computes a polarity of the text in range [-1, 1].
type Scorer interface {
	Polarity(text string) float64
}

// Classifier maps polarity of a text to a sentiment label.
//
// Polarity at or beyond ±threshold gets a positive or negative label,
// anything closer to zero is neutral. Zero threshold turns it into
// a plain sign check.
type Classifier struct {
	scorer    Scorer
	threshold float64
}

// NewClassifier makes a new Classifier.
func NewClassifier(scorer Scorer, threshold float64) (*Classifier, error) {
	if scorer == nil {
		return nil, errors.New("no sentiment scorer")
	}
	if threshold < 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v is out of range [0, 1)", threshold)
	}
	return &Classifier{scorer: scorer, threshold: threshold}, nil
}

// Classify returns a label of the text along with its polarity.
func (c *Classifier) Classify(text string) (store.Sentiment, float64) {
	p := c.scorer.Polarity(text)
	switch {
	case p > 0 && p >= c.threshold:
		return store.Positive, p
	case p < 0 && p <= -c.threshold:
		return store.Negative, p
	default:
		return store.Neutral, p
	}
}
