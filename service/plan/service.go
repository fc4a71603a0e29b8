// Package plan loads orchestration plans from storage. A plan is a declarative
// YAML document naming an objective and the subtasks that accomplish it.
package plan

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/swarmlab/swarm/model/graph"
)

// Plan is a declarative orchestration request.
type Plan struct {
	Name      string       `json:"name" yaml:"name"`
	Objective string       `json:"objective" yaml:"objective"`
	Tasks     []graph.Spec `json:"tasks" yaml:"tasks"`
}

// Validate reports a structurally unusable plan; task-level validation is
// deferred to graph construction.
func (p *Plan) Validate() error {
	if p.Objective == "" {
		return fmt.Errorf("plan %q: objective is required", p.Name)
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan %q: at least one task is required", p.Name)
	}
	return nil
}

// Service loads and caches plans.
type Service struct {
	mu      sync.RWMutex
	fs      afs.Service
	baseURL string
	options []storage.Option
	cache   map[string]*Plan
}

// New creates a plan service rooted at baseURL. Storage options are passed
// through to the underlying file system on every load.
func New(baseURL string, options ...storage.Option) *Service {
	return &Service{
		fs:      afs.New(),
		baseURL: baseURL,
		options: options,
		cache:   make(map[string]*Plan),
	}
}

// Load returns the plan at the given location, relative to the service base
// URL unless absolute. Loaded plans are cached; use Refresh to force a reread.
func (s *Service) Load(ctx context.Context, location string) (*Plan, error) {
	s.mu.RLock()
	cached, ok := s.cache[location]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return s.Refresh(ctx, location)
}

// Refresh rereads the plan at the given location and replaces the cache entry.
func (s *Service) Refresh(ctx context.Context, location string) (*Plan, error) {
	URL := location
	if s.baseURL != "" && url.IsRelative(location) {
		URL = url.Join(s.baseURL, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", location, err)
	}
	plan, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", location, err)
	}
	s.mu.Lock()
	s.cache[location] = plan
	s.mu.Unlock()
	return plan, nil
}

// Upsert places a plan directly into the cache under the given location.
func (s *Service) Upsert(location string, plan *Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[location] = plan
}

// Decode parses a YAML plan document and validates it.
func Decode(data []byte) (*Plan, error) {
	plan := &Plan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
