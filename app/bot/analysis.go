package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Semior001/newsvoice/app/analyzer"
	"github.com/Semior001/newsvoice/pkg/botx"
	"golang.org/x/exp/slog"
)

const (
	emptyQueryText = "Please, send me a company name, for example *Microsoft*."
	noResultsText  = "No articles found. Try a different company name."
	busyText       = "I'm still working on your previous request, send /cancel to stop it."
	cancelledText  = "Analysis cancelled."
)

// analyze runs the analysis over the company name from the message
// and reports the progress by editing a single message.
func (c *Ctrl) analyze(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	query := strings.TrimSpace(req.Text)
	if query == "" || strings.HasPrefix(query, "/") {
		return []botx.Response{{ChatID: req.Chat.ID, Text: emptyQueryText}}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !c.runs.start(req.Chat.ID, cancel) {
		return []botx.Response{{ChatID: req.Chat.ID, Text: busyText}}, nil
	}
	defer c.runs.finish(req.Chat.ID)

	msgID, err := c.API.SendMessage(ctx, botx.Response{
		ChatID:           req.Chat.ID,
		ReplyToMessageID: req.MessageID,
		Text:             fmt.Sprintf("Searching news about *%s*...", escapeMarkdown(query)),
	})
	if err != nil {
		return nil, fmt.Errorf("send progress message: %w", err)
	}

	rep, err := c.Analyzer.Analyze(ctx, query, c.progress(ctx, req.Chat.ID, msgID, query))
	switch {
	case errors.Is(err, analyzer.ErrEmptyQuery):
		return []botx.Response{{ChatID: req.Chat.ID, Text: emptyQueryText}}, nil
	case errors.Is(err, context.Canceled):
		return []botx.Response{{ChatID: req.Chat.ID, EditMessageID: msgID, Text: cancelledText}}, nil
	case err != nil:
		return nil, fmt.Errorf("analyze %q: %w", query, err)
	}

	if rep.Empty() {
		return []botx.Response{{ChatID: req.Chat.ID, EditMessageID: msgID, Text: noResultsText}}, nil
	}

	return append([]botx.Response{{
		ChatID:        req.Chat.ID,
		EditMessageID: msgID,
		Text:          fmt.Sprintf("Analysis complete for *%s*", escapeMarkdown(query)),
	}}, renderReport(req.Chat.ID, rep)...), nil
}

// progress returns a callback that edits the message with a progress bar.
// Failed edits do not stop the analysis.
func (c *Ctrl) progress(ctx context.Context, chatID, msgID, query string) analyzer.ProgressFunc {
	return func(done, total int) {
		_, err := c.API.SendMessage(ctx, botx.Response{
			ChatID:        chatID,
			EditMessageID: msgID,
			Text:          renderProgress(query, done, total),
		})
		if err != nil {
			c.Logger.WarnCtx(ctx, "failed to update progress",
				slog.Int("done", done),
				slog.Int("total", total),
				slog.Any("err", err))
		}
	}
}
