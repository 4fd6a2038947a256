package bot

import (
	"fmt"
	"strings"

	"github.com/Semior001/newsvoice/app/analyzer"
	"github.com/Semior001/newsvoice/app/store"
	"github.com/Semior001/newsvoice/pkg/botx"
)

const barWidth = 10

func renderProgress(query string, done, total int) string {
	return fmt.Sprintf("Analyzing news about *%s*\n%s %d/%d",
		escapeMarkdown(query), analyzer.Bar(done, total, barWidth), done, total)
}

// renderReport makes a sentiment overview followed by a panel
// and an audio for every article.
func renderReport(chatID string, rep analyzer.Report) []botx.Response {
	resps := []botx.Response{{ChatID: chatID, Text: renderOverview(rep)}}

	for i, a := range rep.Articles {
		resps = append(resps, botx.Response{ChatID: chatID, Text: renderArticle(i+1, a)})
		if a.HasAudio() {
			resps = append(resps, botx.Response{
				ChatID: chatID,
				Text:   fmt.Sprintf("%d. %s", i+1, escapeMarkdown(a.Title)),
				Audio:  &botx.Audio{Name: fmt.Sprintf("%d.mp3", i+1), Data: a.Audio},
			})
		}
	}

	return resps
}

func renderOverview(rep analyzer.Report) string {
	counts := rep.Counts()

	sb := &strings.Builder{}
	_, _ = sb.WriteString("*Sentiment overview*\n")
	for _, s := range store.Sentiments {
		_, _ = sb.WriteString(fmt.Sprintf("%s %s %s %d\n",
			s.Emoji(), analyzer.Bar(counts[s], len(rep.Articles), barWidth), s, counts[s]))
	}

	if len(rep.PageErrors) > 0 {
		_, _ = sb.WriteString(fmt.Sprintf("\n_%d search page(s) could not be loaded_\n", len(rep.PageErrors)))
	}

	return sb.String()
}

func renderArticle(n int, a store.Article) string {
	sb := &strings.Builder{}
	_, _ = sb.WriteString(fmt.Sprintf("*%d. %s* (%s %s)\n\n", n, escapeMarkdown(a.Title), a.Sentiment.Emoji(), a.Sentiment))
	_, _ = sb.WriteString(escapeMarkdown(a.Summary))
	_, _ = sb.WriteString("\n\n")

	if len(a.Keywords) > 0 {
		_, _ = sb.WriteString("Keywords: " + escapeMarkdown(strings.Join(a.Keywords, ", ")) + "\n")
	}

	if !a.HasAudio() {
		_, _ = sb.WriteString("_Audio translation unavailable_\n")
	}

	return sb.String()
}

// legacy telegram markdown allows escaping only these characters
var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
