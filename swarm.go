package swarm

import (
	"context"
	"sync"

	"github.com/viant/afs/storage"

	"github.com/swarmlab/swarm/model/graph"
	"github.com/swarmlab/swarm/progress"
	"github.com/swarmlab/swarm/sandbox"
	"github.com/swarmlab/swarm/scheduler"
	"github.com/swarmlab/swarm/service/event"
	"github.com/swarmlab/swarm/service/plan"
	"github.com/swarmlab/swarm/service/session"
)

// Service is the orchestration entry point wiring the scheduler, the sandbox,
// session persistence and plan loading together.
type Service struct {
	config    Config
	delegates scheduler.Delegates

	scheduler *scheduler.Service
	sandbox   *sandbox.Service
	sessions  *session.Service
	plans     *plan.Service
	events    *event.Service

	planBaseURL string
	planOptions []storage.Option

	mu       sync.RWMutex
	trackers map[string]*progress.Progress
}

// New creates a swarm service.
func New(options ...Option) *Service {
	ret := &Service{
		config:   DefaultConfig(),
		trackers: make(map[string]*progress.Progress),
	}
	for _, option := range options {
		option(ret)
	}
	ret.sandbox = sandbox.New(ret.config.Sandbox)
	ret.delegates = ret.withDefaultDelegates(ret.delegates)
	ret.scheduler = scheduler.New(ret.delegates, ret.config.Scheduler)
	ret.sessions = session.New(nil)
	ret.plans = plan.New(ret.planBaseURL, ret.planOptions...)
	return ret
}

// withDefaultDelegates fills unbound roles: executor payloads run in the
// sandbox, every other role echoes its description.
func (s *Service) withDefaultDelegates(delegates scheduler.Delegates) scheduler.Delegates {
	echo := func(ctx context.Context, task *graph.Task) (interface{}, error) {
		return task.Description, nil
	}
	if delegates.Coordinator == nil {
		delegates.Coordinator = echo
	}
	if delegates.Researcher == nil {
		delegates.Researcher = echo
	}
	if delegates.Analyst == nil {
		delegates.Analyst = echo
	}
	if delegates.Executor == nil {
		delegates.Executor = sandbox.Delegate(s.sandbox)
	}
	if delegates.Validator == nil {
		delegates.Validator = echo
	}
	return delegates
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Sandbox exposes the embedded sandbox service.
func (s *Service) Sandbox() *sandbox.Service {
	return s.sandbox
}
