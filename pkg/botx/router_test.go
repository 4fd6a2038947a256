package botx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(text string) Handler {
	return func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: text}}, nil
	}
}

func tag(name string, log *[]string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) ([]Response, error) {
			*log = append(*log, name)
			return next(ctx, req)
		}
	}
}

func TestRouter_Handle(t *testing.T) {
	var calls []string

	rtr := NewRouter()
	rtr.Use(tag("global", &calls))
	rtr.NotFound(reply("query"))
	rtr.Add("/start", reply("start"))
	rtr.Add("/cancel", reply("cancel"))
	rtr.Group(func(rtr *Router) {
		rtr.Use(tag("admin", &calls))
		rtr.Add("/cache", reply("cache"))
		rtr.Add("/cache_reset", reply("cache reset"))
	})

	tbl := []struct {
		text      string
		want      string
		wantCalls []string
	}{
		{text: "/start", want: "start", wantCalls: []string{"global"}},
		{text: "/start@newsvoice_bot", want: "start", wantCalls: []string{"global"}},
		{text: "/cancel now", want: "cancel", wantCalls: []string{"global"}},
		{text: "/cache", want: "cache", wantCalls: []string{"global", "admin"}},
		{text: "/cache_reset", want: "cache reset", wantCalls: []string{"global", "admin"}},
		{text: "Microsoft", want: "query", wantCalls: []string{"global"}},
		{text: "  ", want: "query", wantCalls: []string{"global"}},
	}

	for _, tt := range tbl {
		t.Run(tt.text, func(t *testing.T) {
			calls = nil
			resps, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, []Response{{ChatID: "1", Text: tt.want}}, resps)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRouter_Handle_EmptyText(t *testing.T) {
	rtr := NewRouter()
	resps, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}})
	require.NoError(t, err)
	assert.Empty(t, resps)
}

func TestRouter_NotFound(t *testing.T) {
	resps, err := NewRouter().Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: "/unknown"})
	require.NoError(t, err)
	assert.Equal(t, []Response{{ChatID: "1", Text: "command not found"}}, resps)
}

func TestRouter_With(t *testing.T) {
	var calls []string

	base := NewRouter()
	base.Add("/start", reply("start"))

	derived := base.With(tag("derived", &calls))
	derived.Add("/only", reply("only"))

	_, err := base.Handle(context.Background(), Request{Text: "/start"})
	require.NoError(t, err)
	assert.Empty(t, calls, "base router is not affected")

	resps, err := base.Handle(context.Background(), Request{Text: "/only"})
	require.NoError(t, err)
	assert.Equal(t, "command not found", resps[0].Text)

	resps, err = derived.Handle(context.Background(), Request{Text: "/only"})
	require.NoError(t, err)
	assert.Equal(t, "only", resps[0].Text)
	assert.Equal(t, []string{"derived"}, calls)
}

func TestHandler_With(t *testing.T) {
	var calls []string
	h := reply("ok").With(tag("first", &calls), tag("second", &calls))
	_, err := h(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}
