// Package idgen issues opaque identifiers for kernel boots and published
// events. Callers must treat the values as opaque strings.
package idgen

import "github.com/google/uuid"

// NewFunc can be stubbed in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
