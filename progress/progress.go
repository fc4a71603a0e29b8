// Package progress keeps aggregated task counters for a single orchestration
// run. The tracker travels in the context so that the scheduler can update
// counters without a global registry, and concurrent readers (status queries)
// see a consistent snapshot.
package progress

import (
	"context"
	"sync"
	"time"
)

// Delta is an incremental counter change. Fields are signed; a task moving
// from pending to running is {Pending: -1, Running: 1}.
type Delta struct {
	Total     int
	Completed int
	Failed    int
	Cancelled int
	Running   int
	Pending   int
}

// Progress holds the aggregate counters for one orchestration session. Safe
// for concurrent use.
type Progress struct {
	SessionID string
	Objective string
	StartedAt time.Time

	TotalTasks     int
	CompletedTasks int
	FailedTasks    int
	CancelledTasks int
	RunningTasks   int
	PendingTasks   int

	mu       sync.Mutex
	onChange func(Progress)
}

// New creates a tracker for the given session.
func New(sessionID, objective string, total int) *Progress {
	return &Progress{
		SessionID:  sessionID,
		Objective:  objective,
		StartedAt:  time.Now(),
		TotalTasks: total,
		PendingTasks: total,
	}
}

// OnChange registers a callback invoked with a snapshot after every update.
// The callback runs outside the critical section.
func (p *Progress) OnChange(fn func(Progress)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Update applies the supplied delta.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.TotalTasks += d.Total
	p.CompletedTasks += d.Completed
	p.FailedTasks += d.Failed
	p.CancelledTasks += d.Cancelled
	p.RunningTasks += d.Running
	p.PendingTasks += d.Pending
	fn := p.onChange
	snapshot := p.snapshotLocked()
	p.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// Snapshot returns a copy of the current counters.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() Progress {
	return Progress{
		SessionID:      p.SessionID,
		Objective:      p.Objective,
		StartedAt:      p.StartedAt,
		TotalTasks:     p.TotalTasks,
		CompletedTasks: p.CompletedTasks,
		FailedTasks:    p.FailedTasks,
		CancelledTasks: p.CancelledTasks,
		RunningTasks:   p.RunningTasks,
		PendingTasks:   p.PendingTasks,
	}
}

type contextKey struct{}

// WithProgress attaches the tracker to the context.
func WithProgress(ctx context.Context, p *Progress) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the tracker carried by the context, or nil.
func FromContext(ctx context.Context) *Progress {
	p, _ := ctx.Value(contextKey{}).(*Progress)
	return p
}
