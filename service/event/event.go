package event

import "time"

// Context identifies what a lifecycle event is about.
type Context struct {
	SessionID string `json:"sessionId"`
	TaskID    string `json:"taskId,omitempty"`
	Role      string `json:"role,omitempty"`
	EventType string `json:"eventType"`
}

// Event carries a typed payload together with its context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event for the given context and payload.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
