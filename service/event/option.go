package event

import (
	"github.com/swarmlab/swarm/service/messaging/fs"
	"github.com/swarmlab/swarm/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithFsQueueConfig sets the factory producing file-system queue configs.
func WithFsQueueConfig(factory func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsQueueConfig = factory
	}
}

// WithMemoryQueueConfig sets the factory producing memory queue configs.
func WithMemoryQueueConfig(factory func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memQueueConfig = factory
	}
}
