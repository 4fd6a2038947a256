package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Semior001/newsvoice/app/analyzer"
	"github.com/Semior001/newsvoice/app/store"
	"golang.org/x/exp/slog"
)

// Analyze is a command to analyze news about a company once.
type Analyze struct {
	Query    string `long:"query" short:"q" env:"QUERY" default:"Microsoft" description:"company name to search news about"`
	AudioDir string `long:"audio-dir" env:"AUDIO_DIR" description:"directory to save voiced translations to, skipped if empty"`

	Pipeline

	out io.Writer
}

// Execute runs the command.
func (a Analyze) Execute(_ []string) error {
	lg := slog.Default()

	svc, err := a.build(lg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := a.out
	if out == nil {
		out = os.Stdout
	}

	rep, err := svc.Analyze(ctx, a.Query, func(done, total int) {
		lg.Info("progress", slog.Int("done", done), slog.Int("total", total))
	})
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyQuery) {
			return errors.New("please, provide a company name with --query")
		}
		return fmt.Errorf("analyze %q: %w", a.Query, err)
	}

	if err = printReport(out, rep); err != nil {
		return fmt.Errorf("print report: %w", err)
	}

	if a.AudioDir == "" {
		return nil
	}

	if err = saveAudio(a.AudioDir, rep.Articles); err != nil {
		return fmt.Errorf("save audio: %w", err)
	}

	return nil
}

func printReport(w io.Writer, rep analyzer.Report) error {
	if rep.Empty() {
		_, err := fmt.Fprintln(w, "No articles found. Try a different company name.")
		return err
	}

	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "Analysis complete for %s (%d articles, %s)\n\n",
		rep.Query, len(rep.Articles), rep.Elapsed.Round(1e6))

	_, _ = sb.WriteString("Sentiment overview\n")
	counts := rep.Counts()
	for _, s := range store.Sentiments {
		_, _ = fmt.Fprintf(sb, "%s %-8s %s %d\n", s.Emoji(), s, analyzer.Bar(counts[s], len(rep.Articles), 20), counts[s])
	}

	if len(rep.PageErrors) > 0 {
		_, _ = fmt.Fprintf(sb, "\n%d search page(s) could not be loaded:\n", len(rep.PageErrors))
		for _, err := range rep.PageErrors {
			_, _ = fmt.Fprintf(sb, "  %v\n", err)
		}
	}

	for i, art := range rep.Articles {
		_, _ = fmt.Fprintf(sb, "\n%d. %s (%s %s, polarity %.2f)\n", i+1, art.Title, art.Sentiment.Emoji(), art.Sentiment, art.Polarity)
		_, _ = fmt.Fprintf(sb, "   %s\n", art.Summary)
		if len(art.Keywords) > 0 {
			_, _ = fmt.Fprintf(sb, "   Keywords: %s\n", strings.Join(art.Keywords, ", "))
		}
		if art.Translation != "" {
			_, _ = fmt.Fprintf(sb, "   Translation: %s\n", art.Translation)
		}
		if !art.HasAudio() {
			_, _ = sb.WriteString("   Audio translation unavailable\n")
		}
		for _, f := range art.Failures {
			_, _ = fmt.Fprintf(sb, "   ! %v\n", f)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func saveAudio(dir string, articles []store.Article) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("make dir: %w", err)
	}

	for i, art := range articles {
		if !art.HasAudio() {
			continue
		}

		name := filepath.Join(dir, fmt.Sprintf("%d.mp3", i+1))
		if err := os.WriteFile(name, art.Audio, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}
