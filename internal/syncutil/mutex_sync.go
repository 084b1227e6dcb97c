//go:build !deadlock

// Package syncutil selects the mutex implementation used by kernel tables.
// Building with the deadlock tag swaps in an order-checking mutex.
package syncutil

import "sync"

// DeadlockEnabled reports whether lock-order auditing is compiled in.
const DeadlockEnabled = false

type Mutex struct {
	sync.Mutex
}

type RWMutex struct {
	sync.RWMutex
}
