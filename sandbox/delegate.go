package sandbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/swarmlab/swarm/model/graph"
	"github.com/swarmlab/swarm/scheduler"
)

// Delegate adapts the sandbox into a scheduler delegate: the task description
// is the code payload and the task id identifies the caller. A non-succeeding
// outcome becomes a task failure carrying the child's diagnostic.
func Delegate(s *Service) scheduler.Delegate {
	return func(ctx context.Context, task *graph.Task) (interface{}, error) {
		outcome, err := s.Execute(ctx, task.Description, task.ID)
		if err != nil {
			return nil, err
		}
		if !outcome.Succeeded {
			return nil, fmt.Errorf("sandboxed execution failed (exit %d): %s",
				outcome.ExitCode, strings.TrimSpace(outcome.Stderr))
		}
		return outcome, nil
	}
}
