package enrich

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// DefaultTopKeywords is the default number of extracted keywords.
const DefaultTopKeywords = 3

// ErrNoKeywords is returned when the text has nothing to rank.
var ErrNoKeywords = errors.New("no keyword candidates")

// KeywordRanker extracts salient one and two word phrases.
//
// Candidates are runs of words between stop-words and punctuation, cut into
// phrases of at most two words. A word scores as its degree over frequency,
// a phrase scores as the sum of its words, so words that tend to appear in
// longer runs weigh more.
type KeywordRanker struct {
	stopWords map[string]struct{}
}

// NewKeywordRanker makes a ranker with the built-in english stop-words.
func NewKeywordRanker() *KeywordRanker {
	return &KeywordRanker{stopWords: stopWords}
}

var phraseDelimiters = regexp.MustCompile(`[.,;:!?()\[\]{}"“”|/]|\s[-–—]\s`)

type candidate struct {
	words []string
	first int
	score float64
}

// Extract returns up to topN phrases ordered by descending relevance.
// On failure the returned slice is empty, never nil.
func (r *KeywordRanker) Extract(text string, topN int) ([]string, error) {
	if topN <= 0 {
		return []string{}, fmt.Errorf("invalid number of keywords %d", topN)
	}

	var runs [][]string
	for _, chunk := range phraseDelimiters.Split(strings.ToLower(text), -1) {
		var run []string
		for _, w := range tokenize(chunk) {
			w = strings.Trim(w, "'’")
			if r.skip(w) {
				if len(run) > 0 {
					runs = append(runs, run)
				}
				run = nil
				continue
			}
			run = append(run, w)
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}
	}

	if len(runs) == 0 {
		return []string{}, ErrNoKeywords
	}

	freq, degree := map[string]float64{}, map[string]float64{}
	for _, run := range runs {
		for _, w := range run {
			freq[w]++
			degree[w] += float64(len(run))
		}
	}

	candidates := map[string]*candidate{}
	idx := 0
	add := func(words []string) {
		key := strings.Join(words, " ")
		if _, ok := candidates[key]; ok {
			return
		}
		c := &candidate{words: words, first: idx}
		for _, w := range words {
			c.score += degree[w] / freq[w]
		}
		candidates[key] = c
		idx++
	}

	for _, run := range runs {
		for i := range run {
			if i+1 < len(run) {
				add(run[i : i+2])
			}
			add(run[i : i+1])
		}
	}

	sorted := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].first < sorted[j].first
	})

	res := make([]string, 0, topN)
	covered := map[string]struct{}{}
	for _, c := range sorted {
		if len(res) == topN {
			break
		}
		if coveredAll(covered, c.words) {
			continue
		}
		for _, w := range c.words {
			covered[w] = struct{}{}
		}
		res = append(res, strings.Join(c.words, " "))
	}

	return res, nil
}

func (r *KeywordRanker) skip(w string) bool {
	if len([]rune(w)) < 2 {
		return true
	}
	if _, ok := r.stopWords[w]; ok {
		return true
	}
	for _, c := range w {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func coveredAll(covered map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := covered[w]; !ok {
			return false
		}
	}
	return true
}
