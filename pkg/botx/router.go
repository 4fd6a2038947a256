package botx

import (
	"context"
	"sort"
	"strings"
)

// Router returns a multiplexer for handlers.
type Router struct {
	notFound    Handler
	handlers    map[string]Handler
	middlewares []Middleware
}

// NewRouter returns a multiplexer for handlers.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
		notFound: NotFound,
	}
}

// Add adds a handler to the router.
func (r *Router) Add(prefix string, h Handler) {
	r.handlers[prefix] = h
}

// Use applies middleware to all handlers.
func (r *Router) Use(mws ...Middleware) *Router {
	r.middlewares = append(r.middlewares, mws...)
	return r
}

// With returns a new router with middleware applied.
func (r *Router) With(mws ...Middleware) *Router {
	return r.Clone().Use(mws...)
}

// Clone returns a copy of the router.
func (r *Router) Clone() *Router {
	rtr := NewRouter()
	rtr.notFound = r.notFound

	for prefix, h := range r.handlers {
		rtr.Add(prefix, h)
	}

	rtr.middlewares = make([]Middleware, len(r.middlewares))
	copy(rtr.middlewares, r.middlewares)

	return rtr
}

// Group groups handlers, nested middlewares are applied only to
// the handlers of the group.
func (r *Router) Group(f func(rtr *Router)) {
	nested := NewRouter()
	f(nested)

	for prefix, h := range nested.handlers {
		r.Add(prefix, h.With(nested.middlewares...))
	}
}

// NotFound sets a not found handler to the router.
func (r *Router) NotFound(h Handler) {
	r.notFound = h
}

// Handle handles request. The handler with the longest matching
// command prefix wins.
func (r *Router) Handle(ctx context.Context, req Request) ([]Response, error) {
	if req.Text == "" {
		return nil, nil
	}

	return r.match(req.Text).With(r.middlewares...)(ctx, req)
}

func (r *Router) match(text string) Handler {
	prefixes := make([]string, 0, len(r.handlers))
	for prefix := range r.handlers {
		if prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return r.notFound
	}

	cmd := fields[0]
	for _, prefix := range prefixes {
		if strings.HasPrefix(cmd, prefix) {
			return r.handlers[prefix]
		}
	}

	return r.notFound
}
