package botmw

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Semior001/newsvoice/pkg/botx"
	"github.com/Semior001/newsvoice/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var req = botx.Request{Chat: botx.Chat{ID: "42", Username: "user"}, Text: "Microsoft"}

func TestRecover(t *testing.T) {
	h := botx.Handler(func(context.Context, botx.Request) ([]botx.Response, error) {
		panic("boom")
	}).With(Recover(slog.New(logx.NoOp())))

	resps, err := h(context.Background(), req)
	assert.ErrorContains(t, err, "panic: boom")
	assert.Empty(t, resps)
}

func TestTimeout(t *testing.T) {
	t.Run("timed out", func(t *testing.T) {
		h := botx.Handler(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).With(Timeout(10 * time.Millisecond))

		_, err := h(context.Background(), req)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("completed", func(t *testing.T) {
		h := botx.Handler(func(_ context.Context, r botx.Request) ([]botx.Response, error) {
			return []botx.Response{{ChatID: r.Chat.ID, Text: "ok"}}, nil
		}).With(Timeout(time.Second))

		resps, err := h(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "42", Text: "ok"}}, resps)
	})

	t.Run("parent cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		h := botx.Handler(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).With(Timeout(time.Second))

		_, err := h(ctx, req)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("disabled", func(t *testing.T) {
		h := botx.Handler(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			_, hasDeadline := ctx.Deadline()
			assert.False(t, hasDeadline)
			return nil, nil
		}).With(Timeout(0))

		_, err := h(context.Background(), req)
		require.NoError(t, err)
	})
}

func TestRequestID(t *testing.T) {
	var ids []string
	h := botx.Handler(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
		id, ok := logx.RequestIDFromContext(ctx)
		require.True(t, ok)
		ids = append(ids, id)
		return nil, nil
	}).With(RequestID())

	for i := 0; i < 2; i++ {
		_, err := h(context.Background(), req)
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestAppendRequestIDOnError(t *testing.T) {
	ctx := logx.ContextWithRequestID(context.Background(), "req-1")

	t.Run("no error", func(t *testing.T) {
		h := botx.Handler(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{ChatID: "42", Text: "ok"}}, nil
		}).With(AppendRequestIDOnError())

		resps, err := h(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "42", Text: "ok"}}, resps)
	})

	t.Run("error without responses", func(t *testing.T) {
		h := botx.Handler(func(context.Context, botx.Request) ([]botx.Response, error) {
			return nil, errors.New("failed")
		}).With(AppendRequestIDOnError())

		resps, err := h(ctx, req)
		require.Error(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "42", resps[0].ChatID)
		assert.Contains(t, resps[0].Text, "Something went wrong")
		assert.Contains(t, resps[0].Text, "`req-1`")
	})

	t.Run("error with responses", func(t *testing.T) {
		h := botx.Handler(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{
				{ChatID: "42", Text: "partial"},
				{ChatID: "42", Text: "voice", Audio: &botx.Audio{Name: "1.mp3"}},
			}, errors.New("failed")
		}).With(AppendRequestIDOnError())

		resps, err := h(ctx, req)
		require.Error(t, err)
		require.Len(t, resps, 2)
		assert.Equal(t, "partial\n\nRequest ID: `req-1`", resps[0].Text)
		assert.Equal(t, "voice", resps[1].Text)
	})
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelInfo}.NewTextHandler(buf))

	h := botx.Handler(func(_ context.Context, r botx.Request) ([]botx.Response, error) {
		return []botx.Response{{ChatID: r.Chat.ID, Text: "secret report"}}, nil
	}).With(Logger(lg))

	_, err := h(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request received")
	assert.Contains(t, out, "request processed")
	assert.Contains(t, out, "chat_id=42")
	assert.NotContains(t, out, "Microsoft", "command is logged only in debug")
	assert.NotContains(t, out, "secret report", "responses are logged only in debug")
}
