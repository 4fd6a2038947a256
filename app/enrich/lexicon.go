package enrich

import (
	"math"
	"strings"
	"unicode"
)

// Lexicon scores polarity as an average of known word polarities.
// Negation in the two preceding words flips and damps the polarity,
// intensifiers strengthen it.
type Lexicon struct {
	Words        map[string]float64
	Intensifiers map[string]float64
	Negations    map[string]struct{}
}

// NewLexicon makes a Lexicon with the built-in english dictionary.
func NewLexicon() Lexicon {
	return Lexicon{Words: polarWords, Intensifiers: intensifiers, Negations: negations}
}

// Polarity implements Scorer.
func (l Lexicon) Polarity(text string) float64 {
	words := tokenize(text)

	sum, n := 0.0, 0
	for i, w := range words {
		p, ok := l.Words[w]
		if !ok {
			continue
		}

		if i > 0 {
			if k, ok := l.Intensifiers[words[i-1]]; ok {
				p *= k
			}
		}

		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if _, ok := l.Negations[words[j]]; ok {
				p *= -0.5
				break
			}
		}

		sum += p
		n++
	}

	if n == 0 {
		return 0
	}

	return math.Max(-1, math.Min(1, sum/float64(n)))
}

// tokenize splits the text into lowercase words, keeping apostrophes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
}

var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "highly": 1.3, "really": 1.2, "so": 1.2,
	"incredibly": 1.5, "hugely": 1.4, "deeply": 1.3, "sharply": 1.4, "strongly": 1.3,
	"massive": 1.3, "major": 1.2,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "hardly": {}, "nor": {},
	"isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {}, "don't": {}, "doesn't": {},
	"didn't": {}, "won't": {}, "can't": {}, "cannot": {}, "couldn't": {}, "shouldn't": {},
	"isn’t": {}, "doesn’t": {}, "didn’t": {}, "won’t": {}, "can’t": {},
}

var polarWords = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1, "best": 1, "better": 0.5, "positive": 0.23,
	"happy": 0.8, "success": 0.6, "successful": 0.75, "win": 0.8, "wins": 0.8, "won": 0.7,
	"growth": 0.5, "grow": 0.4, "grows": 0.4, "growing": 0.4, "gain": 0.5, "gains": 0.5,
	"rise": 0.4, "rises": 0.4, "rising": 0.35, "rose": 0.4, "soar": 0.7, "soars": 0.7, "soared": 0.7,
	"surge": 0.6, "surges": 0.6, "surged": 0.6, "record": 0.3, "beat": 0.4, "beats": 0.4,
	"profit": 0.4, "profits": 0.4, "profitable": 0.6, "strong": 0.43, "stronger": 0.5,
	"boost": 0.5, "boosts": 0.5, "boosted": 0.5, "improve": 0.5, "improved": 0.5, "improves": 0.5,
	"innovative": 0.5, "innovation": 0.4, "breakthrough": 0.7, "rally": 0.5, "rallies": 0.5,
	"optimistic": 0.6, "upbeat": 0.6, "expand": 0.3, "expands": 0.3, "expansion": 0.3,
	"award": 0.5, "awarded": 0.5, "celebrate": 0.6, "praised": 0.6, "love": 0.5, "loved": 0.6,
	"impressive": 1, "remarkable": 0.75, "robust": 0.4, "thrive": 0.6, "thriving": 0.6,
	"exceeds": 0.5, "exceeded": 0.5, "upgrade": 0.5, "upgraded": 0.5, "benefit": 0.4, "benefits": 0.4,
	"opportunity": 0.4, "opportunities": 0.4, "leading": 0.3, "popular": 0.6, "welcome": 0.5,
	"recovery": 0.4, "recovers": 0.4, "secure": 0.4, "wonderful": 1, "amazing": 0.6, "easy": 0.43,
	// negative
	"bad": -0.7, "worse": -0.4, "worst": -1, "poor": -0.4, "negative": -0.3, "sad": -0.5,
	"loss": -0.5, "losses": -0.5, "lose": -0.5, "loses": -0.5, "lost": -0.4,
	"fall": -0.4, "falls": -0.4, "fell": -0.4, "falling": -0.4, "drop": -0.4, "drops": -0.4, "dropped": -0.4,
	"decline": -0.5, "declines": -0.5, "declined": -0.5, "plunge": -0.7, "plunges": -0.7, "plunged": -0.7,
	"crash": -0.8, "crashes": -0.8, "slump": -0.6, "slumps": -0.6, "weak": -0.4, "weaker": -0.5,
	"lawsuit": -0.5, "lawsuits": -0.5, "sue": -0.5, "sues": -0.5, "sued": -0.5,
	"probe": -0.4, "investigation": -0.4, "antitrust": -0.3, "fraud": -0.8, "scandal": -0.8,
	"layoff": -0.6, "layoffs": -0.6, "cut": -0.3, "cuts": -0.3, "fired": -0.5,
	"fail": -0.6, "fails": -0.6, "failed": -0.6, "failure": -0.7, "risk": -0.3, "risks": -0.3,
	"concern": -0.3, "concerns": -0.3, "warn": -0.4, "warns": -0.4, "warning": -0.4,
	"outage": -0.6, "breach": -0.6, "hack": -0.6, "hacked": -0.7, "miss": -0.4, "misses": -0.4, "missed": -0.4,
	"recall": -0.4, "debt": -0.3, "crisis": -0.7, "threat": -0.5, "threatens": -0.5,
	"angry": -0.6, "terrible": -1, "awful": -1, "disappointing": -0.6, "disappointed": -0.75,
	"criticism": -0.5, "criticised": -0.5, "criticized": -0.5, "fined": -0.6,
	"struggle": -0.5, "struggles": -0.5, "struggling": -0.5, "downgrade": -0.5, "downgraded": -0.5,
	"collapse": -0.8, "collapsed": -0.8, "bankrupt": -0.9, "bankruptcy": -0.9, "ban": -0.4, "banned": -0.5,
}
