package primitive

import (
	"sync/atomic"

	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
)

// SpinMutex polls an atomic flag, yielding the processor between attempts.
type SpinMutex struct {
	locked atomic.Bool
	host   Host
}

func NewSpinMutex(host Host) *SpinMutex {
	return &SpinMutex{host: host}
}

func (m *SpinMutex) Acquire(t *task.Thread) {
	for !m.locked.CompareAndSwap(false, true) {
		m.host.Yield(t)
	}
}

// Release clears the flag; a spinning waiter claims it on its next poll.
func (m *SpinMutex) Release(*task.Thread) *task.Thread {
	m.locked.Store(false)
	return nil
}

func (m *SpinMutex) Kind() Kind { return KindSpin }

// Locked reports the flag state.
func (m *SpinMutex) Locked() bool { return m.locked.Load() }

// BlockingMutex suspends contenders on a FIFO and hands ownership to the
// earliest one on release.
type BlockingMutex struct {
	mu      syncutil.Mutex
	locked  bool
	owner   *task.Thread
	waiters WaitQueue
	host    Host
}

func NewBlockingMutex(host Host) *BlockingMutex {
	return &BlockingMutex{host: host}
}

func (m *BlockingMutex) Acquire(t *task.Thread) {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.owner = t
		m.mu.Unlock()
		return
	}
	m.waiters.Push(t)
	t.SetStatus(task.StatusBlocked)
	m.mu.Unlock()
	m.host.Block(t)
}

func (m *BlockingMutex) Release(*task.Thread) *task.Thread {
	m.mu.Lock()
	next := m.waiters.Pop()
	if next == nil {
		m.locked = false
		m.owner = nil
		m.mu.Unlock()
		return nil
	}
	m.owner = next
	m.mu.Unlock()
	m.host.Wake(next)
	return next
}

func (m *BlockingMutex) Kind() Kind { return KindBlocking }

// Owner returns the holder, nil when unlocked.
func (m *BlockingMutex) Owner() *task.Thread {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Waiters returns the number of suspended contenders.
func (m *BlockingMutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiters.Len()
}
