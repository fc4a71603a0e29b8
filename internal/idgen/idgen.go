package idgen

import "github.com/google/uuid"

// NewFunc produces a globally unique identifier. Exposed as a variable so
// tests can stub it with a deterministic sequence.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }
