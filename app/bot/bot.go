// Package bot contains routers and controllers for bots.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Semior001/newsvoice/app/analyzer"
	"github.com/Semior001/newsvoice/app/store"
	"github.com/Semior001/newsvoice/pkg/botx"
	"github.com/Semior001/newsvoice/pkg/botx/botmw"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
)

// Analyzer runs the news analysis.
type Analyzer interface {
	Analyze(ctx context.Context, query string, progress analyzer.ProgressFunc) (analyzer.Report, error)
}

// CacheStater provides statistics of a cache.
type CacheStater interface {
	CacheStat() cache.Stats
}

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Store          store.Interface
	Analyzer       Analyzer
	Translations   CacheStater
	API            botx.API
	AdminIDs       []string
	AuthToken      string
	HandlerTimeout time.Duration

	runs runs
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		// handler runs in a separate goroutine after timeout
		botmw.Recover(c.Logger),
		c.ensureAuthorized,
	)

	rtr.NotFound(c.analyze)
	rtr.Add("/start", c.start)
	rtr.Add("/help", c.start)
	rtr.Add("/cancel", c.cancel)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/list", c.list)
		rtr.Add("/delete", c.delete)
		rtr.Add("/cache", c.cacheStats)
	})

	return rtr
}

const usage = "Send me a company name, for example *Microsoft*, and I will find the latest news about it.\n" +
	"For every article you will get its sentiment, keywords and a voiced translation.\n" +
	"Send /cancel to stop the running analysis."

func (c *Ctrl) start(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	greeting := "Hello!"
	if u, ok := userFromContext(ctx); ok && u.Username != "" {
		greeting = fmt.Sprintf("Hello, %s!", escapeMarkdown(u.Username))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   greeting + "\n\n" + usage,
	}}, nil
}

func (c *Ctrl) cancel(_ context.Context, req botx.Request) ([]botx.Response, error) {
	text := "Nothing to cancel."
	if c.runs.cancel(req.Chat.ID) {
		text = "Cancelling the analysis..."
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   text,
	}}, nil
}

func (c *Ctrl) ensureAuthorized(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		u, err := c.Store.Get(ctx, req.Chat.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if u, err = c.register(ctx, req); err != nil {
				return nil, err
			}

			if !u.Authorized {
				return []botx.Response{{
					ChatID: req.Chat.ID,
					Text: "Hello! In order to use the bot, you need to provide a token,\n" +
						"please ask admin for it and then send it to me.",
				}}, nil
			}
		case err != nil:
			return nil, fmt.Errorf("get user: %w", err)
		}

		if !u.Authorized {
			if req.Text != c.AuthToken {
				return []botx.Response{{
					ChatID: req.Chat.ID,
					Text:   "You are not authorized, please provide a token.",
				}}, nil
			}

			u.Authorized = true
			if err := c.Store.Put(ctx, u); err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}

			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   "You are now authorized.\n\n" + usage,
			}}, nil
		}

		return h(contextWithUser(ctx, u), req)
	}
}

// register saves a new user, users are authorized right away
// if the bot does not require a token.
func (c *Ctrl) register(ctx context.Context, req botx.Request) (store.User, error) {
	u := store.User{
		ChatID:     req.Chat.ID,
		Username:   req.Chat.Username,
		Authorized: c.AuthToken == "",
	}

	if err := c.Store.Put(ctx, u); err != nil {
		return store.User{}, fmt.Errorf("add user: %w", err)
	}

	if err := c.NotifyAdmins(ctx, fmt.Sprintf("new user: %s", escapeMarkdown(req.Chat.Username))); err != nil {
		c.Logger.WarnCtx(ctx, "notify admins about registered user", slog.Any("err", err))
	}

	return u, nil
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if _, err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}

type userKey struct{}

func userFromContext(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey{}).(store.User)
	return u, ok
}

func contextWithUser(ctx context.Context, u store.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}
