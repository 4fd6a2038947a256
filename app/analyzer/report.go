package analyzer

import (
	"strings"
	"time"

	"github.com/Semior001/newsvoice/app/store"
)

// State is a stage of an analysis run.
type State string

// States of a run.
const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateEnriching State = "enriching"
	StateDone      State = "done"
	StateDoneEmpty State = "done-empty"
)

// Report is an outcome of the analysis.
type Report struct {
	Query    string
	State    State
	Articles []store.Article
	// PageErrors lists search pages that could not be fetched.
	PageErrors []error
	Elapsed    time.Duration
}

// Empty returns true if nothing was found for the query.
func (r Report) Empty() bool { return r.State == StateDoneEmpty }

// Counts returns the number of articles per sentiment.
func (r Report) Counts() map[store.Sentiment]int {
	res := make(map[store.Sentiment]int, len(store.Sentiments))
	for _, a := range r.Articles {
		res[a.Sentiment]++
	}
	return res
}

// Failures returns the number of articles that failed the given stage.
func (r Report) Failures(stage store.Stage) int {
	cnt := 0
	for _, a := range r.Articles {
		if _, failed := a.Failed(stage); failed {
			cnt++
		}
	}
	return cnt
}

// Bar draws a text bar of n out of total, width runes wide.
func Bar(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if n > total {
		n = total
	}
	if n < 0 {
		n = 0
	}

	filled := (n*width + total/2) / total
	if n > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
