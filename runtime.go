package swarm

import (
	"context"
	"log"

	"github.com/swarmlab/swarm/internal/idgen"
	"github.com/swarmlab/swarm/model/graph"
	"github.com/swarmlab/swarm/progress"
	"github.com/swarmlab/swarm/sandbox"
	"github.com/swarmlab/swarm/scheduler"
	"github.com/swarmlab/swarm/service/plan"
	"github.com/swarmlab/swarm/service/session"
)

// Orchestrate runs the supplied subtask specs to completion against the main
// objective. Task-level failures are reported inside the result; an error
// means the graph could not be built or the run could not start.
func (s *Service) Orchestrate(ctx context.Context, objective string, specs []graph.Spec) (*scheduler.Result, error) {
	tasks, err := graph.Build(specs)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, objective, idgen.New(), tasks)
}

// OrchestrateTasks runs a pre-built task graph, letting callers keep the task
// descriptors for cancellation.
func (s *Service) OrchestrateTasks(ctx context.Context, objective string, tasks []*graph.Task) (*scheduler.Result, error) {
	return s.run(ctx, objective, idgen.New(), tasks)
}

// OrchestratePlan loads the plan at the given location and runs it.
func (s *Service) OrchestratePlan(ctx context.Context, location string) (*scheduler.Result, error) {
	loaded, err := s.plans.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.Orchestrate(ctx, loaded.Objective, loaded.Tasks)
}

// LoadPlan loads a plan without running it.
func (s *Service) LoadPlan(ctx context.Context, location string) (*plan.Plan, error) {
	return s.plans.Load(ctx, location)
}

func (s *Service) run(ctx context.Context, objective, sessionID string, tasks []*graph.Task) (*scheduler.Result, error) {
	tracker := progress.New(sessionID, objective, len(tasks))
	s.mu.Lock()
	s.trackers[sessionID] = tracker
	s.mu.Unlock()

	ctx = progress.WithProgress(ctx, tracker)
	if s.events != nil {
		ctx = context.WithValue(ctx, scheduler.EventKey, s.events)
	}

	record, err := s.sessions.Begin(ctx, sessionID, objective)
	if err != nil {
		return nil, err
	}
	result, err := s.scheduler.OrchestrateTasks(ctx, objective, sessionID, tasks)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.End(ctx, record, result); err != nil {
		log.Printf("failed to finalize session %s: %v", sessionID, err)
	}
	return result, nil
}

// RunIsolated executes a code payload in the sandbox outside any task graph.
func (s *Service) RunIsolated(ctx context.Context, code, callerID string) (sandbox.Outcome, error) {
	return s.sandbox.Execute(ctx, code, callerID)
}

// Status returns a snapshot of the progress counters for the given session.
func (s *Service) Status(sessionID string) (progress.Progress, bool) {
	s.mu.RLock()
	tracker, ok := s.trackers[sessionID]
	s.mu.RUnlock()
	if !ok {
		return progress.Progress{}, false
	}
	return tracker.Snapshot(), true
}

// Session returns the persisted record of a finished or running session.
func (s *Service) Session(ctx context.Context, id string) (*session.Record, error) {
	return s.sessions.Lookup(ctx, id)
}

// Sessions lists all recorded sessions in start order.
func (s *Service) Sessions(ctx context.Context) ([]*session.Record, error) {
	return s.sessions.List(ctx)
}
