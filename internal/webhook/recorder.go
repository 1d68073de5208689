package webhook

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onexay/gitobs/internal/repo"
	"github.com/onexay/gitobs/internal/types"
)

// Recorder is a webhook watching one branch for one event type. It keeps
// every event it receives and forwards a delivery record to its sinks.
type Recorder struct {
	id      string
	branch  string
	typ     repo.EventType
	sinks   []Sink
	timeout time.Duration
	clock   func() time.Time
	logger  *slog.Logger

	mu     sync.RWMutex
	events []repo.Event
}

// NewRecorder returns a recorder with no sinks.
func NewRecorder(branch string, typ repo.EventType) *Recorder {
	return &Recorder{
		id:     uuid.NewString(),
		branch: branch,
		typ:    typ,
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// CommitToBranchWebHook watches commits on the named branch.
func CommitToBranchWebHook(branch string) *Recorder {
	return NewRecorder(branch, repo.EventCommit)
}

// MergeToBranchWebHook watches merges into the named branch.
func MergeToBranchWebHook(branch string) *Recorder {
	return NewRecorder(branch, repo.EventMerge)
}

// ID returns the identifier used for delivery records.
func (r *Recorder) ID() string { return r.id }

// Branch returns the watched branch name.
func (r *Recorder) Branch() string { return r.branch }

// Type returns the watched event type.
func (r *Recorder) Type() repo.EventType { return r.typ }

// Matches reports whether the recorder watches branch for typ.
func (r *Recorder) Matches(branch string, typ repo.EventType) bool {
	return r.branch == branch && r.typ == typ
}

// OnEvent appends event to the log. No filtering happens here.
func (r *Recorder) OnEvent(event repo.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()

	if len(r.sinks) == 0 {
		return
	}

	delivery := types.Delivery{
		ID:          uuid.NewString(),
		HookID:      r.id,
		Event:       event.Model(),
		DeliveredAt: r.clock().UTC(),
	}
	for _, sink := range r.sinks {
		r.deliver(sink, delivery)
	}
}

func (r *Recorder) deliver(sink Sink, delivery types.Delivery) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := sink.Deliver(ctx, delivery); err != nil {
		r.logger.Error("webhook delivery failed", "hook", r.id, "delivery", delivery.ID, "error", err)
	}
}

// CaughtEvents returns every received event in receipt order.
func (r *Recorder) CaughtEvents() []repo.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}

// Model converts the recorder to its wire form.
func (r *Recorder) Model() types.Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return types.Hook{
		ID:     r.id,
		Branch: r.branch,
		Event:  string(r.typ),
		Caught: len(r.events),
	}
}
