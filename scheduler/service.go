// Package scheduler drives a task graph to completion: it repeatedly computes
// the ready set, admits up to a concurrency cap of tasks per round, dispatches
// the batch to role-bound delegates, joins the whole batch, and folds the
// outcomes back into the shared swarm state. A round with pending tasks but an
// empty ready set is a deadlock; the remaining tasks are reported failed.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/swarmlab/swarm/internal/idgen"
	"github.com/swarmlab/swarm/model/graph"
	"github.com/swarmlab/swarm/progress"
	"github.com/swarmlab/swarm/service/event"
	"github.com/swarmlab/swarm/tracing"
)

type contextKey string

// EventKey carries an optional *event.Service in the orchestration context;
// when present the scheduler publishes task lifecycle events through it.
const EventKey contextKey = "swarm.events"

// Config represents scheduler configuration.
type Config struct {
	// Concurrency caps how many tasks may run within a single round.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{Concurrency: 5}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("scheduler.concurrency must be > 0")
	}
	return nil
}

// Service orchestrates task graphs.
type Service struct {
	config    Config
	delegates Delegates
}

// New creates a scheduler with the supplied role delegates.
func New(delegates Delegates, config Config) *Service {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	return &Service{config: config, delegates: delegates}
}

// dispatchOutcome pairs a task with what its delegate produced. Failures are
// collected as values, never raised, so one dispatch cannot mask another.
type dispatchOutcome struct {
	task   *graph.Task
	result interface{}
	err    error
}

// Orchestrate builds a task graph from the supplied specs and runs it to
// completion. Task-level failures never surface as an error; only graph
// construction can fail.
func (s *Service) Orchestrate(ctx context.Context, objective string, specs []graph.Spec) (*Result, error) {
	tasks, err := graph.Build(specs)
	if err != nil {
		return nil, err
	}
	return s.OrchestrateTasks(ctx, objective, idgen.New(), tasks)
}

// OrchestrateTasks runs a pre-built task graph. Callers holding the task
// descriptors may cancel pending tasks concurrently; a cancelled task is
// dropped from readiness consideration at the next round boundary.
func (s *Service) OrchestrateTasks(ctx context.Context, objective, sessionID string, tasks []*graph.Task) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.Orchestrate", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"session.id": sessionID, "task.count": fmt.Sprintf("%d", len(tasks))})

	state := NewState()
	results := make(map[string]TaskResult, len(tasks))
	pending := append([]*graph.Task(nil), tasks...)
	tracker := progress.FromContext(ctx)
	status := StatusCompleted

	for len(pending) > 0 {
		pending = s.sweepCancelled(pending, results, tracker)
		if len(pending) == 0 {
			break
		}

		ready := graph.Ready(pending, state.CompletedSet())
		if len(ready) == 0 {
			s.reportDeadlock(ctx, sessionID, pending, results, tracker)
			status = StatusDeadlocked
			break
		}

		admit := ready
		if len(admit) > s.config.Concurrency {
			admit = admit[:s.config.Concurrency]
		}

		// a task may lose the admission race to a concurrent Cancel; it is
		// skipped here and recorded by the sweep next round
		batch := make([]*graph.Task, 0, len(admit))
		for _, task := range admit {
			if err := task.Start(); err != nil {
				continue
			}
			slot := len(batch)
			batch = append(batch, task)
			state.MarkActive(workerID(slot), task.ID)
			tracker.Update(progress.Delta{Pending: -1, Running: 1})
			publishTaskEvent(ctx, sessionID, "scheduled", task)
		}
		if len(batch) == 0 {
			continue
		}

		outcomes := s.dispatch(ctx, batch)

		for slot, outcome := range outcomes {
			task := outcome.task
			if outcome.err != nil {
				_ = task.Fail(outcome.err)
				log.Printf("task %s failed: %v", task.ID, outcome.err)
				tracker.Update(progress.Delta{Running: -1, Failed: 1})
				publishTaskEvent(ctx, sessionID, "failed", task)
			} else {
				_ = task.Complete(outcome.result)
				state.MarkCompleted(task.ID)
				tracker.Update(progress.Delta{Running: -1, Completed: 1})
				publishTaskEvent(ctx, sessionID, "completed", task)
			}
			results[task.ID] = TaskResult{Status: task.Status, Result: task.Result, Error: task.Error}
			state.MarkIdle(workerID(slot))
			pending = removeTask(pending, task.ID)
		}
	}

	return &Result{
		MainObjective: objective,
		Status:        status,
		Results:       results,
		Metadata:      s.metadata(sessionID, results),
	}, nil
}

// dispatch runs the admitted batch concurrently and joins on the whole batch.
// Group functions always return nil: delegate errors and panics are folded
// into the per-slot outcome so the join is never fail-fast.
func (s *Service) dispatch(ctx context.Context, batch []*graph.Task) []dispatchOutcome {
	outcomes := make([]dispatchOutcome, len(batch))
	g, gCtx := errgroup.WithContext(ctx)
	for i, task := range batch {
		i, task := i, task
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = dispatchOutcome{task: task, err: fmt.Errorf("delegate panicked: %v", r)}
				}
			}()
			delegate := s.delegates.Lookup(task.Role)
			if delegate == nil {
				outcomes[i] = dispatchOutcome{task: task, err: fmt.Errorf("no delegate bound for role %s", task.Role)}
				return nil
			}
			result, err := delegate(gCtx, task)
			outcomes[i] = dispatchOutcome{task: task, result: result, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// sweepCancelled records and drops tasks that were cancelled externally.
func (s *Service) sweepCancelled(pending []*graph.Task, results map[string]TaskResult, tracker *progress.Progress) []*graph.Task {
	remaining := pending[:0]
	for _, task := range pending {
		if task.CurrentStatus() == graph.StatusCancelled {
			results[task.ID] = TaskResult{Status: graph.StatusCancelled}
			tracker.Update(progress.Delta{Pending: -1, Cancelled: 1})
			continue
		}
		remaining = append(remaining, task)
	}
	return remaining
}

// reportDeadlock fails every remaining pending task with a diagnostic naming
// its unmet dependencies. A cycle and an upstream failure produce the same
// outcome shape; the per-task error distinguishes failed dependencies from
// merely unfinished ones.
func (s *Service) reportDeadlock(ctx context.Context, sessionID string, pending []*graph.Task, results map[string]TaskResult, tracker *progress.Progress) {
	blocked := make([]string, 0, len(pending))
	for _, task := range pending {
		blocked = append(blocked, task.ID)
	}
	log.Printf("deadlock: no runnable tasks among [%s]", strings.Join(blocked, ", "))

	for _, task := range pending {
		var unmet, failed []string
		for _, dep := range task.DependsOn {
			prior, done := results[dep]
			switch {
			case done && prior.Status == graph.StatusFailed:
				failed = append(failed, dep)
			case !done || prior.Status != graph.StatusCompleted:
				unmet = append(unmet, dep)
			}
		}
		diag := fmt.Sprintf("dependency deadlock: task blocked among [%s]", strings.Join(blocked, ", "))
		if len(failed) > 0 {
			diag = fmt.Sprintf("dependency deadlock: upstream failure of [%s]", strings.Join(failed, ", "))
		} else if len(unmet) > 0 {
			diag = fmt.Sprintf("dependency deadlock: unmet dependencies [%s]", strings.Join(unmet, ", "))
		}
		taskErr := fmt.Errorf("%s", diag)
		if err := task.Fail(taskErr); err != nil {
			// lost the race to a concurrent Cancel
			results[task.ID] = TaskResult{Status: task.CurrentStatus()}
			tracker.Update(progress.Delta{Pending: -1, Cancelled: 1})
			continue
		}
		results[task.ID] = TaskResult{Status: graph.StatusFailed, Error: task.Error}
		tracker.Update(progress.Delta{Pending: -1, Failed: 1})
		publishTaskEvent(ctx, sessionID, "failed", task)
	}
}

func (s *Service) metadata(sessionID string, results map[string]TaskResult) Metadata {
	meta := Metadata{TotalTasks: len(results), SessionID: sessionID}
	for _, r := range results {
		switch r.Status {
		case graph.StatusCompleted:
			meta.CompletedTasks++
		case graph.StatusFailed:
			meta.FailedTasks++
		}
	}
	return meta
}

// publishTaskEvent emits a lifecycle event when an event service rides the
// context; absence of one keeps orchestration silent.
func publishTaskEvent(ctx context.Context, sessionID, eventType string, task *graph.Task) {
	value := ctx.Value(EventKey)
	if value == nil {
		return
	}
	service, ok := value.(*event.Service)
	if !ok {
		return
	}
	publisher, err := event.PublisherOf[*graph.Task](service)
	if err != nil {
		return
	}
	eCtx := &event.Context{
		SessionID: sessionID,
		TaskID:    task.ID,
		Role:      string(task.Role),
		EventType: eventType,
	}
	if err = publisher.Publish(ctx, event.NewEvent(eCtx, task)); err != nil {
		log.Printf("failed to publish task event: %v", err)
	}
}

func workerID(slot int) string {
	return fmt.Sprintf("worker-%d", slot)
}

func removeTask(tasks []*graph.Task, id string) []*graph.Task {
	for i, task := range tasks {
		if task.ID == id {
			return append(tasks[:i], tasks[i+1:]...)
		}
	}
	return tasks
}
