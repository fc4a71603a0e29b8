// Package event distributes typed lifecycle events (task scheduled, task
// completed, task failed) over pluggable messaging queues. A Service is
// attached to the orchestration context; components publish through typed
// publishers resolved by payload type.
package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/afs"

	"github.com/swarmlab/swarm/service/messaging"
	"github.com/swarmlab/swarm/service/messaging/fs"
	"github.com/swarmlab/swarm/service/messaging/memory"
)

// Service manages typed publishers keyed by payload type.
type Service struct {
	queueVendor     messaging.Vendor
	fsQueueConfig   func(name string) fs.Config
	memQueueConfig  func(name string) memory.Config
	typedPublishers map[reflect.Type]any
	mux             sync.RWMutex
}

// New creates an event service backed by the given queue vendor.
func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		typedPublishers: make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch queueVendor {
	case messaging.VendorFs:
		if ret.fsQueueConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires a queue config factory")
		}
	case messaging.VendorMemory:
		if ret.memQueueConfig == nil {
			ret.memQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}
	return ret, nil
}

// QueueOf builds a vendor-specific queue for the given payload type.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case messaging.VendorFs:
		return fs.NewQueue[T](afs.New(), s.fsQueueConfig(name))
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

// PublisherOf returns the publisher for payload type T, creating it and its
// queue on first use.
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	existing, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return existing.(*Publisher[T]), nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	if existing, ok = s.typedPublishers[key]; ok {
		return existing.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	s.typedPublishers[key] = publisher
	return publisher, nil
}

// keyOf keys publishers by the exact payload type; *T and T get separate
// publishers since their Publisher instantiations are distinct types.
func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
