package scheduler

import "github.com/swarmlab/swarm/model/graph"

// Orchestration status values reported on Result.
const (
	StatusCompleted  = "completed"
	StatusDeadlocked = "deadlocked"
)

// TaskResult is the terminal record for a single task. Result and Error are
// mutually exclusive.
type TaskResult struct {
	Status graph.Status `json:"status"`
	Result interface{}  `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Metadata aggregates per-run counters.
type Metadata struct {
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
	FailedTasks    int    `json:"failedTasks"`
	SessionID      string `json:"sessionId"`
}

// Result is the aggregate outcome of one orchestration run.
type Result struct {
	MainObjective string                `json:"mainObjective"`
	Status        string                `json:"status"`
	Results       map[string]TaskResult `json:"results"`
	Metadata      Metadata              `json:"metadata"`
}
