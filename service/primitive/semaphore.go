package primitive

import (
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
)

// Semaphore is a counting semaphore. The count never goes negative; a
// release with waiters passes the unit to the earliest one and leaves the
// count untouched.
type Semaphore struct {
	mu      syncutil.Mutex
	count   int
	waiters WaitQueue
	host    Host
}

func NewSemaphore(host Host, count int) *Semaphore {
	if count < 0 {
		count = 0
	}
	return &Semaphore{host: host, count: count}
}

// Acquire is the down operation.
func (s *Semaphore) Acquire(t *task.Thread) {
	s.mu.Lock()
	if s.count > 0 {
		s.count--
		s.mu.Unlock()
		return
	}
	s.waiters.Push(t)
	t.SetStatus(task.StatusBlocked)
	s.mu.Unlock()
	s.host.Block(t)
}

// Release is the up operation.
func (s *Semaphore) Release(*task.Thread) *task.Thread {
	s.mu.Lock()
	next := s.waiters.Pop()
	if next == nil {
		s.count++
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	s.host.Wake(next)
	return next
}

func (s *Semaphore) Kind() Kind { return KindSemaphore }

func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Semaphore) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.Len()
}
