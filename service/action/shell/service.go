// Package shell runs operating system commands on the local host for executor
// tasks whose payload is a shell command rather than interpreted code.
package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"

	"github.com/swarmlab/swarm/model/graph"
	"github.com/swarmlab/swarm/scheduler"
)

// Service executes shell commands through a lazily opened local session.
type Service struct {
	mux     sync.Mutex
	session *gosh.Service
	env     map[string]string
	timeout time.Duration
}

// Option customizes a shell service.
type Option func(*Service)

// WithEnvironment sets environment variables for the session.
func WithEnvironment(env map[string]string) Option {
	return func(s *Service) {
		s.env = env
	}
}

// WithTimeout sets the per-command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// New creates a shell service.
func New(options ...Option) *Service {
	ret := &Service{timeout: time.Minute}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Run executes a command in the local session and returns its combined output
// and exit status.
func (s *Service) Run(ctx context.Context, command string) (string, int, error) {
	session, err := s.getSession(ctx)
	if err != nil {
		return "", -1, fmt.Errorf("failed to open shell session: %w", err)
	}
	output, status, err := session.Run(ctx, command, runner.WithTimeout(int(s.timeout.Milliseconds())))
	if err != nil {
		return output, status, err
	}
	if status != 0 {
		return output, status, fmt.Errorf("command exited with status %d: %s", status, strings.TrimSpace(output))
	}
	return output, status, nil
}

// Delegate adapts the shell service into a scheduler delegate; the task
// description is the command to run.
func (s *Service) Delegate() scheduler.Delegate {
	return func(ctx context.Context, task *graph.Task) (interface{}, error) {
		output, _, err := s.Run(ctx, task.Description)
		if err != nil {
			return nil, err
		}
		return output, nil
	}
}

func (s *Service) getSession(ctx context.Context) (*gosh.Service, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session != nil {
		return s.session, nil
	}
	var options []runner.Option
	if len(s.env) > 0 {
		options = append(options, runner.WithEnvironment(s.env))
	}
	session, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// Close releases the underlying session.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
