// Package timer wakes sleeping threads once their deadline passes.
package timer

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
)

// Waker makes a thread runnable again.
type Waker interface {
	Wake(t *task.Thread)
}

// Service is the timer queue.
type Service struct {
	mu         syncutil.Mutex
	config     Config
	waker      Waker
	entries    deadlines
	seq        uint64
	shutdownCh chan struct{}
}

// New creates a timer queue waking expired threads through waker.
func New(waker Waker, config Config) (*Service, error) {
	if waker == nil {
		return nil, fmt.Errorf("waker is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config:     config,
		waker:      waker,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Add registers t to be woken at deadline (ms).
func (s *Service) Add(deadline uint64, t *task.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	heap.Push(&s.entries, &entry{deadline: deadline, seq: s.seq, thread: t})
}

// Remove drops every pending entry for t.
func (s *Service) Remove(t *task.Thread) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for i := 0; i < len(s.entries); {
		if s.entries[i].thread == t {
			heap.Remove(&s.entries, i)
			removed++
			continue
		}
		i++
	}
	return removed
}

// Expire wakes, in deadline order, every thread due at now and returns how
// many were woken.
func (s *Service) Expire(now uint64) int {
	s.mu.Lock()
	var due []*task.Thread
	for len(s.entries) > 0 && s.entries[0].deadline <= now {
		due = append(due, heap.Pop(&s.entries).(*entry).thread)
	}
	s.mu.Unlock()
	for _, t := range due {
		s.waker.Wake(t)
	}
	return len(due)
}

// Len returns the number of pending sleepers.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start polls for expired deadlines until ctx is done or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			if woken := s.Expire(clock.Millis()); woken > 0 {
				log.WithField("woken", woken).Trace("timer expired sleepers")
			}
		}
	}
}

// Shutdown stops the poll loop.
func (s *Service) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
}
