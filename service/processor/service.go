package processor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/tracing"
)

// Config represents processor configuration
type Config struct {
	// IdlePoll bounds how long an idle processor waits before re-checking
	// the ready queue.
	IdlePoll time.Duration `json:"idlePoll,omitempty" yaml:"idlePoll,omitempty"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{IdlePoll: 10 * time.Millisecond}
}

// Service is the processor. It implements primitive.Host and timer.Waker.
type Service struct {
	config    Config
	scheduler *scheduler.Service
	publisher *event.Publisher
	progress  *progress.Progress
	idle      *task.Context

	mu      syncutil.Mutex
	current *task.Thread
	started bool

	cancelFn context.CancelFunc
	loopWg   sync.WaitGroup
}

// New creates a processor
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		idle:   task.NewContext(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if s.config.IdlePoll <= 0 {
		return nil, fmt.Errorf("idlePoll must be positive, got %v", s.config.IdlePoll)
	}
	return s, nil
}

// Start launches the dispatch loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("processor already started")
	}
	s.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel
	s.loopWg.Add(1)
	go s.run(loopCtx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	defer s.loopWg.Done()
	ticker := time.NewTicker(s.config.IdlePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		t := s.scheduler.Fetch()
		if t == nil {
			select {
			case <-ctx.Done():
				return
			case <-s.scheduler.Notify():
			case <-ticker.C:
			}
			continue
		}
		if !s.dispatch(ctx, t) {
			return
		}
	}
}

// dispatch runs t until it switches back. It returns false once the idle
// context has been killed.
func (s *Service) dispatch(ctx context.Context, t *task.Thread) bool {
	if t.Context().Killed() || t.Status() == task.StatusZombie {
		return true
	}
	t.SetStatus(task.StatusRunning)
	t.MarkDispatched(clock.Millis())
	s.setCurrent(t)

	_, span := tracing.StartSpan(ctx, "processor.dispatch", "INTERNAL")
	span.WithInts(map[string]int64{"pid": int64(t.Pid), "tid": int64(t.Tid), "stride": int64(t.Stride())})
	s.progress.Update(progress.Delta{Dispatched: 1})
	s.publisher.Publish(event.New(event.TypeDispatch, t.Pid, t.Tid))
	log.WithFields(log.Fields{"pid": t.Pid, "tid": t.Tid, "stride": t.Stride()}).Trace("dispatch")

	resumed := s.idle.SwitchTo(t.Context())
	s.setCurrent(nil)
	tracing.EndSpan(span, nil)
	return resumed
}

// Current returns the running thread, nil when idle.
func (s *Service) Current() *task.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Service) setCurrent(t *task.Thread) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

// Yield re-queues the running thread t and switches to the next one.
func (s *Service) Yield(t *task.Thread) {
	t.SetStatus(task.StatusReady)
	s.progress.Update(progress.Delta{Yielded: 1})
	s.scheduler.Add(t)
	s.park(t)
}

// Block switches away from t, which its caller already marked Blocked and
// registered with a wait queue or the timer.
func (s *Service) Block(t *task.Thread) {
	s.progress.Update(progress.Delta{Blocked: 1})
	s.publisher.Publish(event.New(event.TypeBlock, t.Pid, t.Tid))
	s.park(t)
}

// Wake makes a blocked thread runnable again.
func (s *Service) Wake(t *task.Thread) {
	if t.Context().Killed() || t.Status() == task.StatusZombie {
		return
	}
	t.SetStatus(task.StatusReady)
	s.progress.Update(progress.Delta{Woken: 1})
	s.publisher.Publish(event.New(event.TypeWake, t.Pid, t.Tid))
	s.scheduler.Add(t)
}

// Exit abandons the context of the running thread t, already marked Zombie,
// and terminates the calling goroutine. It does not return.
func (s *Service) Exit(t *task.Thread) {
	s.progress.Update(progress.Delta{Exited: 1})
	t.Context().Leave(s.idle)
	runtime.Goexit()
}

// park switches from t to the idle context and unwinds the goroutine when
// t is killed while suspended.
func (s *Service) park(t *task.Thread) {
	if !t.Context().SwitchTo(s.idle) {
		runtime.Goexit()
	}
}

// Shutdown stops the dispatch loop. Threads still parked stay parked until
// their contexts are killed by the owner.
func (s *Service) Shutdown() {
	s.mu.Lock()
	cancel := s.cancelFn
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.idle.Kill()
	s.loopWg.Wait()
}
