// Package fs provides a file-system backed implementation of messaging.Queue
// built on the afs abstraction, so queues can live on local disk or any other
// afs-supported scheme. Messages move between pending/, processing/, failed/
// and dlq/ directories as they progress.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"github.com/swarmlab/swarm/service/messaging"
)

// Config holds file-system queue settings.
type Config struct {
	BasePath   string
	MaxRetries int
}

// DefaultConfig returns a default file-system queue configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/swarm/queue",
		MaxRetries: 3,
	}
}

// Message implements messaging.Message for the file-system queue.
type Message[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	queue     *Queue[T]
	mu        sync.Mutex
	processed bool
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack removes the message from the processing directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	m.UpdatedAt = time.Now()
	return m.queue.remove(context.Background(), m.queue.processingDir, m.ID)
}

// Nack parks the message for retry, or in dlq/ once the retry limit is hit.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()

	dir := m.queue.failedDir
	if m.Retries > m.queue.config.MaxRetries {
		dir = m.queue.dlqDir
	}
	if wErr := m.queue.write(context.Background(), dir, m); wErr != nil {
		return wErr
	}
	return m.queue.remove(context.Background(), m.queue.processingDir, m.ID)
}

// Queue implements a file-system backed messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a file-system queue rooted at config.BasePath.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.failedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create queue directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish persists a new message in the pending directory.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return q.write(ctx, q.pendingDir, msg)
}

// Consume picks the oldest message, preferring failed messages eligible for
// retry over fresh pending ones. Returns (nil, nil) when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, dir := range []string{q.failedDir, q.pendingDir} {
		msg, err := q.take(ctx, dir)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
	}
	return nil, nil
}

// take moves the oldest message of dir into processing and returns it.
func (q *Queue[T]) take(ctx context.Context, dir string) (*Message[T], error) {
	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var candidates []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			candidates = append(candidates, obj)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ModTime().Equal(candidates[j].ModTime()) {
			return candidates[i].Name() < candidates[j].Name()
		}
		return candidates[i].ModTime().Before(candidates[j].ModTime())
	})
	obj := candidates[0]

	data, err := q.fs.DownloadWithURL(ctx, obj.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", obj.URL(), err)
	}
	var msg Message[T]
	if err := json.Unmarshal(data, &msg); err != nil {
		// quarantine the unreadable message
		_ = q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, "invalid-"+obj.Name()))
		return nil, fmt.Errorf("failed to decode message %s: %w", obj.URL(), err)
	}
	msg.queue = q
	msg.UpdatedAt = time.Now()

	if err := q.write(ctx, q.processingDir, &msg); err != nil {
		return nil, err
	}
	if err := q.fs.Delete(ctx, obj.URL()); err != nil {
		return nil, fmt.Errorf("failed to remove message from %s: %w", dir, err)
	}
	return &msg, nil
}

func (q *Queue[T]) write(ctx context.Context, dir string, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode message %s: %w", m.ID, err)
	}
	dest := path.Join(dir, m.ID+".json")
	return q.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data))
}

func (q *Queue[T]) remove(ctx context.Context, dir, id string) error {
	location := path.Join(dir, id+".json")
	if exists, _ := q.fs.Exists(ctx, location); exists {
		return q.fs.Delete(ctx, location)
	}
	return nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
