package botx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	updates chan Request

	mu   sync.Mutex
	sent []Response
	err  error
}

func (f *fakeAPI) Updates() <-chan Request { return f.updates }

func (f *fakeAPI) SendMessage(_ context.Context, resp Response) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, resp)
	return "1", nil
}

func (f *fakeAPI) messages() []Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Response(nil), f.sent...)
}

func TestBot_Run(t *testing.T) {
	api := &fakeAPI{updates: make(chan Request, 3)}
	b := NewBot(func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: "echo: " + req.Text}}, nil
	}, api, WithWorkers(2))

	api.updates <- Request{Chat: Chat{ID: "1"}, Text: "a"}
	api.updates <- Request{Chat: Chat{ID: "2"}, Text: "b"}
	close(api.updates)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop after updates channel closed")
	}

	assert.ElementsMatch(t, []Response{
		{ChatID: "1", Text: "echo: a"},
		{ChatID: "2", Text: "echo: b"},
	}, api.messages())
}

func TestBot_Run_ContextDone(t *testing.T) {
	api := &fakeAPI{updates: make(chan Request)}
	b := NewBot(NotFound, api, WithWorkers(0))
	assert.Equal(t, 1, b.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop after context cancellation")
	}
}

func TestBot_handleUpdate_Errors(t *testing.T) {
	api := &fakeAPI{err: errors.New("network")}
	b := NewBot(func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: "partial"}}, errors.New("failed")
	}, api)

	require.NotPanics(t, func() { b.handleUpdate(context.Background(), Request{Chat: Chat{ID: "1"}}) })
	assert.Empty(t, api.messages())
}

func TestAudio_String(t *testing.T) {
	var a *Audio
	assert.Equal(t, "<nil>", a.String())
	assert.Equal(t, "1.mp3", (&Audio{Name: "1.mp3", Data: []byte("ID3")}).String())
}

type blockingAPI struct{ fakeAPI }

func (b *blockingAPI) SendMessage(ctx context.Context, _ Response) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestBot_send_Timeout(t *testing.T) {
	b := NewBot(NotFound, &blockingAPI{}, WithSendTimeout(10*time.Millisecond))
	err := b.send(context.Background(), Response{ChatID: "1", Text: "hello"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
