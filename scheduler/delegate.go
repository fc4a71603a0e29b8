package scheduler

import (
	"context"

	"github.com/swarmlab/swarm/model/graph"
)

// Delegate executes a single task and returns its result. A returned error
// marks the task failed without aborting the round or the orchestration.
type Delegate func(ctx context.Context, task *graph.Task) (interface{}, error)

// Delegates binds one delegate to every worker capability. The struct is
// closed over the role set: a new role does not dispatch until it gets a
// field here and a case in Lookup.
type Delegates struct {
	Coordinator Delegate
	Researcher  Delegate
	Analyst     Delegate
	Executor    Delegate
	Validator   Delegate
}

// Lookup returns the delegate bound to the given role, or nil when the role
// has no binding.
func (d Delegates) Lookup(role graph.Role) Delegate {
	switch role {
	case graph.RoleCoordinator:
		return d.Coordinator
	case graph.RoleResearcher:
		return d.Researcher
	case graph.RoleAnalyst:
		return d.Analyst
	case graph.RoleExecutor:
		return d.Executor
	case graph.RoleValidator:
		return d.Validator
	}
	return nil
}

// UniformDelegates binds the same delegate to every role.
func UniformDelegates(delegate Delegate) Delegates {
	return Delegates{
		Coordinator: delegate,
		Researcher:  delegate,
		Analyst:     delegate,
		Executor:    delegate,
		Validator:   delegate,
	}
}
