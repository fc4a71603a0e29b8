package graph

import (
	"fmt"
	"sync"
	"time"

	"github.com/swarmlab/swarm/internal/clock"
)

// Spec describes a subtask submitted for orchestration. Role is carried as a
// raw capability name; Build resolves it against the closed role set.
type Spec struct {
	Role         string   `json:"role" yaml:"role"`
	Description  string   `json:"description" yaml:"description"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Task is a single unit of work within a task graph. Identity, role,
// description and dependency set are fixed at construction; only the status
// trio (Status/Result/Error) and the timestamps move, and solely through the
// transition methods below so that an illegal combination cannot be built.
// Transitions and CurrentStatus synchronize on an internal mutex, so Cancel
// may be called from another goroutine while the scheduler runs.
type Task struct {
	ID          string      `json:"id"`
	Role        Role        `json:"role"`
	Description string      `json:"description"`
	DependsOn   []string    `json:"dependsOn,omitempty"`
	Status      Status      `json:"status"`
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`

	mu sync.Mutex
}

// CurrentStatus returns the task status, safe for concurrent use with the
// transition methods.
func (t *Task) CurrentStatus() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Status
}

// Start transitions the task to in_progress and stamps StartedAt.
func (t *Task) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureTransition(StatusInProgress); err != nil {
		return err
	}
	now := clock.Now()
	t.StartedAt = &now
	t.Status = StatusInProgress
	return nil
}

// Complete records the result and transitions the task to completed.
func (t *Task) Complete(result interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureTransition(StatusCompleted); err != nil {
		return err
	}
	now := clock.Now()
	t.CompletedAt = &now
	t.Result = result
	t.Status = StatusCompleted
	return nil
}

// Fail records the error and transitions the task to failed. A pending task
// may fail directly when the scheduler sweeps it during deadlock reporting.
func (t *Task) Fail(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tErr := t.ensureTransition(StatusFailed); tErr != nil {
		return tErr
	}
	now := clock.Now()
	t.CompletedAt = &now
	if err != nil {
		t.Error = err.Error()
	}
	t.Status = StatusFailed
	return nil
}

// Cancel removes a pending task from future readiness consideration. Safe to
// call from another goroutine; a task already claimed by the scheduler
// refuses the transition.
func (t *Task) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureTransition(StatusCancelled); err != nil {
		return err
	}
	t.Status = StatusCancelled
	return nil
}

// ensureTransition must be called with the mutex held.
func (t *Task) ensureTransition(next Status) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("task %s: illegal transition %s -> %s", t.ID, t.Status, next)
	}
	return nil
}
