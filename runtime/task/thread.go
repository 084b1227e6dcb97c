package task

import (
	"github.com/viant/kcore/internal/syncutil"
)

// Thread is the schedulable unit. The owning process controls its lifetime;
// the ready queue, the processor and wait queues hold plain references.
type Thread struct {
	Pid int `json:"pid"`
	Tid int `json:"tid"`

	mu        syncutil.Mutex
	ctx       *Context
	status    Status
	stride    uint64
	priority  uint64
	syscalls  map[int]uint32
	beginTime uint64
	exitCode  int
}

// NewThread creates a Ready thread with the default priority and a fresh
// parked context.
func NewThread(pid, tid int) *Thread {
	return &Thread{
		Pid:      pid,
		Tid:      tid,
		ctx:      NewContext(),
		status:   StatusReady,
		priority: DefaultPriority,
		syscalls: make(map[int]uint32),
	}
}

// Context returns the thread's saved execution context.
func (t *Thread) Context() *Context {
	return t.ctx
}

func (t *Thread) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Thread) SetStatus(status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Stride returns the accumulated stride.
func (t *Thread) Stride() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stride
}

// Advance adds one pass to the stride and returns the new value.
func (t *Thread) Advance(bigStride uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stride += Pass(bigStride, t.priority)
	return t.stride
}

func (t *Thread) Priority() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priority
}

// SetPriority changes the priority; values below MinPriority are rejected
// with ErrInvalidArgument and leave the thread unchanged.
func (t *Thread) SetPriority(priority int64) error {
	if err := ValidatePriority(priority); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.priority = uint64(priority)
	return nil
}

// CountSyscall records one invocation of syscall id.
func (t *Thread) CountSyscall(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syscalls[id]++
}

// SyscallTimes returns a copy of the per-syscall invocation counts.
func (t *Thread) SyscallTimes() map[int]uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make(map[int]uint32, len(t.syscalls))
	for id, count := range t.syscalls {
		result[id] = count
	}
	return result
}

// MarkDispatched records the first dispatch time; later calls are ignored.
func (t *Thread) MarkDispatched(nowMs uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.beginTime == 0 {
		t.beginTime = nowMs
	}
}

// BeginTime returns the first dispatch time in ms, zero if never dispatched.
func (t *Thread) BeginTime() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beginTime
}

// SetExit marks the thread Zombie with code.
func (t *Thread) SetExit(code int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusZombie
	t.exitCode = code
}

// ExitCode returns the exit code and whether the thread has exited.
func (t *Thread) ExitCode() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitCode, t.status == StatusZombie
}
