package task

// Status is the scheduling state of a thread.
type Status string

const (
	StatusReady   Status = "ready"
	StatusRunning Status = "running"
	StatusBlocked Status = "blocked"
	StatusZombie  Status = "zombie"
)

// IsRunnable reports whether a thread in this status may sit on the ready queue.
func (s Status) IsRunnable() bool {
	return s == StatusReady || s == StatusRunning
}
