package webhook

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/onexay/gitobs/internal/repo"
	"github.com/onexay/gitobs/internal/types"
)

// Sink receives a delivery record for every event a recorder catches.
type Sink interface {
	Deliver(ctx context.Context, delivery types.Delivery) error
}

// DeliveryLog lists the deliveries recorded for a hook, oldest first.
type DeliveryLog interface {
	Deliveries(ctx context.Context, hookID string) ([]types.Delivery, error)
}

// Options control recorders built by a Factory.
type Options struct {
	Sinks []Sink
	// Timeout bounds each sink call. Sinks run synchronously inside OnEvent,
	// which the repository calls with its lock held, so a slow sink stalls
	// every repository operation for up to Timeout per sink. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Factory builds recorders sharing the same sinks. Deliveries happen on the
// committing goroutine, in sink order; see Options.Timeout.
type Factory struct {
	opts Options
}

// NewFactory returns a factory for recorders configured by opts.
func NewFactory(opts Options) *Factory {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Factory{opts: opts}
}

// New returns a recorder watching branch for typ.
func (f *Factory) New(branch string, typ repo.EventType) *Recorder {
	r := NewRecorder(branch, typ)
	r.sinks = append(r.sinks, f.opts.Sinks...)
	r.timeout = f.opts.Timeout
	r.clock = f.opts.Clock
	r.logger = f.opts.Logger.With("branch", branch, "event", string(typ))
	return r
}
