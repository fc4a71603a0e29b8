// Package swarm coordinates role-bound worker delegates over a task
// dependency graph. Callers submit an objective with a batch of subtask
// specs; the scheduler runs them in topological rounds under a concurrency
// cap, and an embedded sandbox executes untrusted code payloads in
// resource-limited child processes.
package swarm
