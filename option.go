package swarm

import (
	"log"

	"github.com/viant/afs/storage"

	"github.com/swarmlab/swarm/sandbox"
	"github.com/swarmlab/swarm/scheduler"
	"github.com/swarmlab/swarm/service/event"
	"github.com/swarmlab/swarm/service/messaging"
	"github.com/swarmlab/swarm/tracing"
)

// Option customizes the swarm service.
type Option func(*Service)

// WithConfig replaces the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithConcurrency caps how many tasks run within one scheduling round.
func WithConcurrency(concurrency int) Option {
	return func(s *Service) {
		s.config.Scheduler.Concurrency = concurrency
	}
}

// WithSandboxConfig overrides the sandbox configuration.
func WithSandboxConfig(config sandbox.Config) Option {
	return func(s *Service) {
		s.config.Sandbox = config
	}
}

// WithDelegates binds role delegates. Roles left nil fall back to defaults:
// the executor role runs its payload in the sandbox, every other role echoes
// its task description.
func WithDelegates(delegates scheduler.Delegates) Option {
	return func(s *Service) {
		s.delegates = delegates
	}
}

// WithEventVendor enables task lifecycle events over the given queue vendor.
func WithEventVendor(vendor messaging.Vendor, options ...event.Option) Option {
	return func(s *Service) {
		events, err := event.New(vendor, options...)
		if err != nil {
			log.Printf("failed to initialise event service: %v", err)
			return
		}
		s.events = events
	}
}

// WithEventService attaches a pre-built event service.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithPlanBaseURL roots plan loading at the given base URL; storage options
// pass through to the underlying file system.
func WithPlanBaseURL(baseURL string, options ...storage.Option) Option {
	return func(s *Service) {
		s.planBaseURL = baseURL
		s.planOptions = options
	}
}

// WithTracing enables OpenTelemetry span export to the given file, or stdout
// when empty.
func WithTracing(serviceName, version, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, version, outputFile); err != nil {
			log.Printf("failed to initialise tracing: %v", err)
		}
	}
}
