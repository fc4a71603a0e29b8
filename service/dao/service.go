// Package dao defines the generic persistence contract used by services that
// keep records keyed by id, with an optional parameterized listing facet.
package dao

import (
	"context"
)

// Parameter narrows a List call; interpretation is store specific.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list parameter.
func NewParameter(name string, value interface{}) *Parameter {
	return &Parameter{Name: name, Value: value}
}

// Service is a generic data-access contract over records of type T keyed by K.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
