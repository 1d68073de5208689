package repo

import (
	"io"
	"log/slog"
	"time"
)

// Options control repository behaviour.
type Options struct {
	// Logger receives dispatch diagnostics. Nil discards them.
	Logger *slog.Logger
	// Clock stamps new commits. Nil uses time.Now.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
