// Package graph defines the task dependency model: task descriptors with
// declared dependency edges, graph construction with validation, and the
// readiness query consulted by the scheduler loop.
package graph

import (
	"fmt"

	"github.com/swarmlab/swarm/internal/clock"
)

// ValidationError describes a malformed task specification detected at graph
// construction time. No partial graph is built when Build returns one.
type ValidationError struct {
	Spec   int // index of the offending spec within the submitted batch
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task spec %d: %s", e.Spec, e.Reason)
}

// TaskID returns the deterministic identifier assigned to the i-th spec of a
// batch. Callers can therefore declare dependencies on tasks submitted in the
// same call without knowing ids in advance.
func TaskID(i int) string {
	return fmt.Sprintf("task_%d", i)
}

// Build validates the supplied specs and materializes them into task
// descriptors with deterministic ids. Each dependency must reference another
// id assigned within the same batch; a self-reference or an unknown id fails
// construction, as does an unrecognized role.
func Build(specs []Spec) ([]*Task, error) {
	ids := make(map[string]bool, len(specs))
	for i := range specs {
		ids[TaskID(i)] = true
	}

	tasks := make([]*Task, 0, len(specs))
	for i, spec := range specs {
		role, err := ParseRole(spec.Role)
		if err != nil {
			return nil, &ValidationError{Spec: i, Reason: err.Error()}
		}
		id := TaskID(i)
		for _, dep := range spec.Dependencies {
			if dep == id {
				return nil, &ValidationError{Spec: i, Reason: fmt.Sprintf("task %s depends on itself", id)}
			}
			if !ids[dep] {
				return nil, &ValidationError{Spec: i, Reason: fmt.Sprintf("unresolved dependency %q", dep)}
			}
		}
		tasks = append(tasks, &Task{
			ID:          id,
			Role:        role,
			Description: spec.Description,
			DependsOn:   append([]string(nil), spec.Dependencies...),
			Status:      StatusPending,
			CreatedAt:   clock.Now(),
		})
	}
	return tasks, nil
}

// Ready returns the subset of pending whose every dependency id is present in
// completed, preserving submission order. The function is pure; it is safe to
// call repeatedly with the same inputs.
func Ready(pending []*Task, completed map[string]bool) []*Task {
	var ready []*Task
outer:
	for _, task := range pending {
		if task.CurrentStatus() != StatusPending {
			continue
		}
		for _, dep := range task.DependsOn {
			if !completed[dep] {
				continue outer
			}
		}
		ready = append(ready, task)
	}
	return ready
}
