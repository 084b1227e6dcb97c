// Package primitive implements the kernel synchronization primitives: spin
// and blocking mutexes, counting semaphores and condition variables.
//
// Blocking primitives hand ownership directly to the earliest waiter on
// release and report that waiter, so the caller can settle its bookkeeping
// in the same critical section as the wake decision.
package primitive
