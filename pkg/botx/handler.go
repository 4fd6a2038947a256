package botx

import "context"

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// With returns a new handler with middleware applied.
func (h Handler) With(mws ...Middleware) Handler {
	base := h
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// Request is a request for handler.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// Response is a response from handler.
type Response struct {
	ChatID           string
	ReplyToMessageID string
	// EditMessageID, if set, replaces the text of an already sent message.
	EditMessageID string
	Text          string
	// Audio, if set, is sent as an audio file with Text as its caption.
	Audio *Audio
}

// Audio is an audio file attached to a response.
type Audio struct {
	Name string
	Data []byte
}

// String returns a short description of the audio, without its content.
func (a *Audio) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Name
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
