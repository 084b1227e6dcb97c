package task

import "errors"

// Kernel-wide sentinel errors. Callers detect them with errors.Is; the syscall
// boundary maps them to numeric return codes.
var (
	// ErrInvalidHandle is returned when a resource, thread or process id does
	// not name a live slot.
	ErrInvalidHandle = errors.New("kernel: invalid handle")

	// ErrWouldDeadlock is returned when granting a request could leave the
	// system in an unsafe state.
	ErrWouldDeadlock = errors.New("kernel: would deadlock")

	// ErrInvalidArgument covers out-of-range arguments such as a priority
	// below two or a release of a unit the caller does not hold.
	ErrInvalidArgument = errors.New("kernel: invalid argument")

	// ErrBusy is returned when removing a resource that is still allocated or
	// requested.
	ErrBusy = errors.New("kernel: resource busy")

	// ErrCorrupted reports a broken ledger invariant. It is fatal.
	ErrCorrupted = errors.New("kernel: ledger corrupted")
)
