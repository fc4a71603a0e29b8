package scheduler

import "sync"

// State is the shared coordination record for one orchestration run: the set
// of completed task ids and the table of active workers. The scheduler loop
// is the sole mutator; in-flight dispatches only read snapshots, so an
// RWMutex keeps concurrent reads safe without serializing the loop.
type State struct {
	mu             sync.RWMutex
	completedOrder []string
	completed      map[string]bool
	activeWorkers  map[string]string
}

// NewState creates an empty coordination record.
func NewState() *State {
	return &State{
		completed:     make(map[string]bool),
		activeWorkers: make(map[string]string),
	}
}

// MarkCompleted records a task id as completed. Discovery order is retained
// for diagnostics.
func (s *State) MarkCompleted(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed[taskID] {
		return
	}
	s.completed[taskID] = true
	s.completedOrder = append(s.completedOrder, taskID)
}

// MarkActive records that a worker claimed a task.
func (s *State) MarkActive(workerID, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeWorkers[workerID] = taskID
}

// MarkIdle releases a worker's claim.
func (s *State) MarkIdle(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeWorkers, workerID)
}

// CompletedTasks returns completed task ids in discovery order.
func (s *State) CompletedTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.completedOrder...)
}

// CompletedSet returns a copy of the completed id set.
func (s *State) CompletedSet() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]bool, len(s.completed))
	for id := range s.completed {
		set[id] = true
	}
	return set
}

// IsCompleted reports whether the given task id completed.
func (s *State) IsCompleted(taskID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed[taskID]
}

// ActiveWorkers returns a copy of the worker-to-task claim table.
func (s *State) ActiveWorkers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workers := make(map[string]string, len(s.activeWorkers))
	for worker, task := range s.activeWorkers {
		workers[worker] = task
	}
	return workers
}
