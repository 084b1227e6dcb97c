// Package scheduler implements the stride-scheduled ready queue.
package scheduler

import (
	"github.com/gammazero/deque"
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
)

// Service is the shared ready queue. Fetch always returns the ready thread
// with the smallest stride; ties go to the thread enqueued first.
type Service struct {
	mu     syncutil.Mutex
	config Config
	queue  deque.Deque[*task.Thread]
	notify chan struct{}
}

// Add enqueues a ready thread and wakes an idle processor.
func (s *Service) Add(t *task.Thread) {
	s.mu.Lock()
	s.queue.PushBack(t)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Fetch removes and returns the thread with minimum stride, nil when the
// queue is empty. The winner's stride is advanced by its pass before removal.
func (s *Service) Fetch() *task.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return nil
	}
	selected := 0
	minStride := s.queue.At(0).Stride()
	for i := 1; i < s.queue.Len(); i++ {
		if stride := s.queue.At(i).Stride(); task.StrideLess(stride, minStride) {
			selected, minStride = i, stride
		}
	}
	t := s.queue.At(selected)
	t.Advance(s.config.BigStride)
	s.queue.Remove(selected)
	return t
}

// Remove drops t from the queue, reporting whether it was queued.
func (s *Service) Remove(t *task.Thread) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.queue.Index(func(candidate *task.Thread) bool { return candidate == t })
	if index < 0 {
		return false
	}
	s.queue.Remove(index)
	return true
}

// Len returns the number of queued threads.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Notify is signalled whenever a thread becomes ready.
func (s *Service) Notify() <-chan struct{} {
	return s.notify
}

// BigStride returns the configured pass numerator.
func (s *Service) BigStride() uint64 {
	return s.config.BigStride
}

// New creates a scheduler
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		notify: make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
