package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Semior001/newsvoice/app/store"
	"github.com/Semior001/newsvoice/pkg/botx"
	"github.com/samber/lo"
)

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return nil, nil
		}

		return h(ctx, req)
	}
}

// list prints all users, "/list authorized" prints only authorized ones.
func (c *Ctrl) list(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	lreq := store.ListRequest{OnlyAuthorized: strings.Contains(req.Text, "authorized")}

	users, err := c.Store.List(ctx, lreq)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString("Users:\n")
	for _, u := range users {
		_, _ = sb.WriteString(fmt.Sprintf("id: %s, username: %s, authorized: %t\n",
			u.ChatID, escapeMarkdown(u.Username), u.Authorized))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) delete(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	tokens := strings.Fields(req.Text)
	if len(tokens) != 2 {
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "Usage: /delete <chat id>",
		}}, nil
	}

	chatID := tokens[1]
	if err := c.Store.Delete(ctx, chatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   fmt.Sprintf("User with id %s does not exist.", chatID),
			}}, nil
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   fmt.Sprintf("User with id %s was deleted.", chatID),
	}}, nil
}

func (c *Ctrl) cacheStats(_ context.Context, req botx.Request) ([]botx.Response, error) {
	if c.Translations == nil {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "translation cache is disabled"}}, nil
	}

	stats := c.Translations.CacheStat()
	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: fmt.Sprintf("translations cache\nhits: %d, misses: %d, evictions: %d, added: %d\n",
			stats.Hits, stats.Misses, stats.Evicted, stats.Added),
	}}, nil
}
