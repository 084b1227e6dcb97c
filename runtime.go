package kcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/service/dao"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/loader"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/service/syscall"
	"github.com/viant/kcore/service/timer"
)

// ProcessOutput is the outcome of a process started with StartProcess.
type ProcessOutput struct {
	Pid      int           `json:"pid" yaml:"pid"`
	Image    string        `json:"image" yaml:"image"`
	ExitCode int           `json:"exitCode" yaml:"exitCode"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Wait blocks until the process exits or timeout elapses.
type Wait func(ctx context.Context, timeout time.Duration) (*ProcessOutput, error)

// State is a point-in-time dump of the kernel.
type State struct {
	BootID     string          `json:"bootId" yaml:"bootId"`
	StartedAt  time.Time       `json:"startedAt" yaml:"startedAt"`
	DumpedAt   time.Time       `json:"dumpedAt" yaml:"dumpedAt"`
	Counters   Counters        `json:"counters" yaml:"counters"`
	Processes  []*process.Info `json:"processes" yaml:"processes"`
	ReadyQueue int             `json:"readyQueue" yaml:"readyQueue"`
	Sleeping   int             `json:"sleeping" yaml:"sleeping"`
}

// Counters mirrors the kernel progress counters.
type Counters struct {
	Dispatched int `json:"dispatched" yaml:"dispatched"`
	Yielded    int `json:"yielded" yaml:"yielded"`
	Blocked    int `json:"blocked" yaml:"blocked"`
	Woken      int `json:"woken" yaml:"woken"`
	Exited     int `json:"exited" yaml:"exited"`
	Refused    int `json:"refused" yaml:"refused"`
}

// Runtime represents a running kernel
type Runtime struct {
	config    *Config
	scheduler *scheduler.Service
	processor *processor.Service
	timer     *timer.Service
	syscall   *syscall.Service
	processes syscall.Table
	loader    *loader.Registry[syscall.Entry]
	publisher *event.Publisher
	progress  *progress.Progress
	meta      *meta.Service
	initEntry syscall.Entry

	mu       sync.Mutex
	started  bool
	cancelFn context.CancelFunc
	timerWg  sync.WaitGroup
}

// reaper returns the default init program: it reaps exited children every
// interval.
func reaper(interval time.Duration) syscall.Entry {
	return func(c *syscall.Caller) int {
		for {
			for {
				pid, code := c.Waitpid(-1)
				if pid < 0 {
					break
				}
				log.WithFields(log.Fields{"pid": pid, "code": code}).Debug("reaped")
			}
			c.SleepFor(interval)
		}
	}
}

// Start boots the init process and starts the processor and timer.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("runtime already started")
	}
	runCtx, cancel := context.WithCancel(progress.WithTracker(ctx, r.progress))
	if _, err := r.syscall.Boot(runCtx, r.config.Init.Image, r.initEntry); err != nil {
		cancel()
		return fmt.Errorf("failed to boot init: %w", err)
	}
	r.timerWg.Add(1)
	go func() {
		defer r.timerWg.Done()
		_ = r.timer.Start(runCtx)
	}()
	if err := r.processor.Start(runCtx); err != nil {
		cancel()
		return err
	}
	r.started = true
	r.cancelFn = cancel
	log.WithField("bootId", r.progress.BootID).Info("kernel started")
	return nil
}

// Shutdown stops dispatching and abandons every remaining thread.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancelFn
	started := r.started
	r.started = false
	r.mu.Unlock()
	if !started {
		return nil
	}
	r.processor.Shutdown()
	r.timer.Shutdown()
	cancel()
	r.timerWg.Wait()
	return r.syscall.Shutdown(ctx)
}

// RegisterProgram adds a program image.
func (r *Runtime) RegisterProgram(name string, entry syscall.Entry, priority int64) error {
	return r.loader.Register(&loader.Program[syscall.Entry]{Name: name, Entry: entry, Priority: priority})
}

// StartProcess launches image as a child of init.
func (r *Runtime) StartProcess(ctx context.Context, image string) (*process.Process, Wait, error) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return nil, nil, fmt.Errorf("runtime not started")
	}
	aProcess, err := r.syscall.Launch(ctx, image)
	if err != nil {
		return nil, nil, err
	}
	wait := func(ctx context.Context, timeout time.Duration) (*ProcessOutput, error) {
		deadline := time.NewTimer(timeout)
		defer deadline.Stop()
		select {
		case <-aProcess.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("timeout waiting for process %d", aProcess.ID)
		}
		code, _ := aProcess.ExitCode()
		return &ProcessOutput{
			Pid:      aProcess.ID,
			Image:    aProcess.Image(),
			ExitCode: code,
			Elapsed:  clock.Now().Sub(aProcess.CreatedAt),
		}, nil
	}
	return aProcess, wait, nil
}

// Process returns a live or unreaped process
func (r *Runtime) Process(ctx context.Context, pid int) (*process.Process, error) {
	return r.processes.Load(ctx, pid)
}

// Processes returns processes matching parameters
func (r *Runtime) Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	return r.processes.List(ctx, parameters...)
}

// Listen feeds kernel events to handler until ctx is done. It is a no-op
// unless events are enabled.
func (r *Runtime) Listen(ctx context.Context, handler func(*event.Event)) {
	r.publisher.Listen(ctx, handler)
}

// Progress returns a copy of the kernel counters.
func (r *Runtime) Progress() Counters {
	snapshot := r.progress.Snapshot()
	return Counters{
		Dispatched: snapshot.Dispatched,
		Yielded:    snapshot.Yielded,
		Blocked:    snapshot.Blocked,
		Woken:      snapshot.Woken,
		Exited:     snapshot.Exited,
		Refused:    snapshot.Refused,
	}
}

// State captures the current kernel state.
func (r *Runtime) State(ctx context.Context) (*State, error) {
	processes, err := r.processes.List(ctx)
	if err != nil {
		return nil, err
	}
	state := &State{
		BootID:     r.progress.BootID,
		StartedAt:  r.progress.StartedAt,
		DumpedAt:   clock.Now(),
		Counters:   r.Progress(),
		ReadyQueue: r.scheduler.Len(),
		Sleeping:   r.timer.Len(),
	}
	for _, p := range processes {
		state.Processes = append(state.Processes, p.Info())
	}
	return state, nil
}

// Dump writes the kernel state as YAML to URL.
func (r *Runtime) Dump(ctx context.Context, URL string) error {
	state, err := r.State(ctx)
	if err != nil {
		return err
	}
	return r.meta.Save(ctx, URL, state)
}
