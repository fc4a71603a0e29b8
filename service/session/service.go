// Package session records orchestration runs so finished swarms remain
// queryable after completion.
package session

import (
	"context"
	"time"

	"github.com/swarmlab/swarm/internal/clock"
	"github.com/swarmlab/swarm/scheduler"
	"github.com/swarmlab/swarm/service/dao"
	"github.com/swarmlab/swarm/service/dao/store"
)

// Record captures one orchestration run.
type Record struct {
	ID        string            `json:"id"`
	Objective string            `json:"objective"`
	Result    *scheduler.Result `json:"result,omitempty"`
	StartedAt time.Time         `json:"startedAt"`
	EndedAt   *time.Time        `json:"endedAt,omitempty"`
}

// Service persists session records.
type Service struct {
	store dao.Service[string, Record]
}

// New creates a session service backed by the supplied store, or an in-memory
// store when nil.
func New(aStore dao.Service[string, Record]) *Service {
	if aStore == nil {
		aStore = store.NewMemory[string, Record](func(r *Record) string { return r.ID })
	}
	return &Service{store: aStore}
}

// Begin registers a newly started run.
func (s *Service) Begin(ctx context.Context, id, objective string) (*Record, error) {
	record := &Record{ID: id, Objective: objective, StartedAt: clock.Now()}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// End stamps the run finished and attaches its result.
func (s *Service) End(ctx context.Context, record *Record, result *scheduler.Result) error {
	now := clock.Now()
	record.EndedAt = &now
	record.Result = result
	return s.store.Save(ctx, record)
}

// Lookup returns the record for the given session id.
func (s *Service) Lookup(ctx context.Context, id string) (*Record, error) {
	return s.store.Load(ctx, id)
}

// List returns all recorded sessions in start order.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.store.List(ctx)
}
