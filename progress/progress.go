package progress

import (
	"context"
	"sync"
	"time"
)

// Delta is an incremental counter change. Fields are signed.
type Delta struct {
	Dispatched int
	Yielded    int
	Blocked    int
	Woken      int
	Exited     int
	Refused    int
}

// Progress keeps kernel-wide counters. It is safe for concurrent use.
type Progress struct {
	BootID    string
	StartedAt time.Time

	Dispatched int
	Yielded    int
	Blocked    int
	Woken      int
	Exited     int
	Refused    int

	mu       sync.Mutex
	onChange func(Progress)
}

// New creates a tracker for a boot.
func New(bootID string, startedAt time.Time) *Progress {
	return &Progress{BootID: bootID, StartedAt: startedAt}
}

// Update applies d. A registered callback receives a copy outside the lock.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.Dispatched += d.Dispatched
	p.Yielded += d.Yielded
	p.Blocked += d.Blocked
	p.Woken += d.Woken
	p.Exited += d.Exited
	p.Refused += d.Refused
	snapshot := p.copy()
	cb := p.onChange
	p.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copy()
}

// OnChange registers the callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		BootID:     p.BootID,
		StartedAt:  p.StartedAt,
		Dispatched: p.Dispatched,
		Yielded:    p.Yielded,
		Blocked:    p.Blocked,
		Woken:      p.Woken,
		Exited:     p.Exited,
		Refused:    p.Refused,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds p in a derived context.
func WithTracker(ctx context.Context, p *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, p)
}

// FromContext extracts the tracker carried by ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(trackerKey).(*Progress)
	return p, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if p, ok := FromContext(ctx); ok {
		p.Update(d)
	}
}
