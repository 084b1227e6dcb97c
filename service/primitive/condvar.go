package primitive

import (
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
)

// Condvar is a condition variable. A signal wakes at most one waiter and is
// lost when nobody waits. The woken thread does not hold the mutex it
// released and must reacquire it itself.
type Condvar struct {
	mu      syncutil.Mutex
	waiters WaitQueue
	host    Host
}

func NewCondvar(host Host) *Condvar {
	return &Condvar{host: host}
}

// Wait registers t as a waiter, runs release, then suspends t. Registration
// happens before release so a signal issued right after the unlock is not
// lost. When release fails t is deregistered and the error returned without
// suspending.
func (c *Condvar) Wait(t *task.Thread, release func() error) error {
	c.mu.Lock()
	c.waiters.Push(t)
	t.SetStatus(task.StatusBlocked)
	if err := release(); err != nil {
		c.waiters.Remove(t)
		t.SetStatus(task.StatusRunning)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	c.host.Block(t)
	return nil
}

// Signal wakes the earliest waiter and returns it, nil when none waits.
func (c *Condvar) Signal() *task.Thread {
	c.mu.Lock()
	next := c.waiters.Pop()
	c.mu.Unlock()
	if next != nil {
		c.host.Wake(next)
	}
	return next
}

func (c *Condvar) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiters.Len()
}
