package botx

import (
	"time"

	"golang.org/x/exp/slog"
)

// Options defines options for Bot.
type Options struct {
	Workers int
	Logger  *slog.Logger
	// SendTimeout limits sending of a single response, zero means no limit.
	SendTimeout time.Duration
}

// Option defines a function that configures Bot.
type Option func(*Options)

// WithWorkers sets the number of workers to run.
func WithWorkers(workers int) Option {
	return func(o *Options) { o.Workers = workers }
}

// WithLogger sets the logger to use.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithSendTimeout limits the time to send a single response,
// e.g. to upload an audio file.
func WithSendTimeout(d time.Duration) Option {
	return func(o *Options) { o.SendTimeout = d }
}
