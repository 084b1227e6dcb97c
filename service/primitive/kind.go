package primitive

import "github.com/viant/kcore/runtime/task"

// Kind tags a lock implementation.
type Kind string

const (
	KindSpin      Kind = "spin"
	KindBlocking  Kind = "blocking"
	KindSemaphore Kind = "semaphore"
)

// HandsOff reports whether Release passes ownership straight to a waiter.
// A spin lock waiter takes ownership itself when its Acquire returns.
func (k Kind) HandsOff() bool {
	return k != KindSpin
}

// Lock is a unit-granting primitive guarded by the resource ledger.
type Lock interface {
	// Acquire returns once t holds a unit, suspending t when none is free.
	Acquire(t *task.Thread)
	// Release returns a unit held by t and reports the waiter it was handed
	// to, if any.
	Release(t *task.Thread) *task.Thread
	Kind() Kind
}
