package bot

import (
	"context"
	"sync"
)

// runs keeps track of analyses in flight, one per chat.
type runs struct {
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// start registers a run for the chat. It returns false if the chat
// already has one.
func (r *runs) start(chatID string, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		r.active = map[string]context.CancelFunc{}
	}

	if _, busy := r.active[chatID]; busy {
		return false
	}

	r.active[chatID] = cancel
	return true
}

func (r *runs) finish(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, chatID)
}

// cancel cancels the run of the chat, if any.
func (r *runs) cancel(chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancel, ok := r.active[chatID]
	if ok {
		cancel()
	}
	return ok
}
