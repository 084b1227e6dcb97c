// Package syscall is the boundary between programs and the kernel core.
// Every operation takes the calling thread, counts the call in its syscall
// table and returns a non-negative result or a negative code.
package syscall

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/dao"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/loader"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/service/timer"
	"github.com/viant/kcore/tracing"
)

// Entry is a program or thread body. Its return value is the exit code.
type Entry func(c *Caller) int

// Table is the process arena.
type Table interface {
	dao.Service[int, process.Process]
	Allocate() int
}

// Service implements the syscalls.
type Service struct {
	processes Table
	processor *processor.Service
	scheduler *scheduler.Service
	timer     *timer.Service
	loader    *loader.Registry[Entry]
	publisher *event.Publisher
	progress  *progress.Progress
	bootTime  uint64
	initPid   int
}

// New creates the syscall service
func New(options ...Option) (*Service, error) {
	s := &Service{bootTime: clock.Millis(), initPid: -1}
	for _, opt := range options {
		opt(s)
	}
	if s.processes == nil {
		return nil, fmt.Errorf("process table is required")
	}
	if s.processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if s.scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if s.timer == nil {
		return nil, fmt.Errorf("timer is required")
	}
	if s.loader == nil {
		s.loader = loader.New[Entry]()
	}
	return s, nil
}

// Loader returns the image registry.
func (s *Service) Loader() *loader.Registry[Entry] {
	return s.loader
}

// InitPid returns the pid adopting orphans, -1 before boot.
func (s *Service) InitPid() int {
	return s.initPid
}

// Boot creates the init process running entry. It must be called once,
// before any other process is launched.
func (s *Service) Boot(ctx context.Context, image string, entry Entry) (*process.Process, error) {
	if s.initPid >= 0 {
		return nil, fmt.Errorf("init process already running as pid %d", s.initPid)
	}
	p, err := s.launch(ctx, -1, process.NewSpace(image), entry, 0)
	if err != nil {
		return nil, err
	}
	s.initPid = p.ID
	return p, nil
}

// Launch starts image as a child of the init process.
func (s *Service) Launch(ctx context.Context, image string) (*process.Process, error) {
	program, err := s.loader.Load(image)
	if err != nil {
		return nil, err
	}
	return s.launch(ctx, s.initPid, process.NewSpace(image), program.Entry, program.Priority)
}

// launch creates a process with one thread running entry and links it to
// parent.
func (s *Service) launch(ctx context.Context, parent int, space process.AddressSpace, entry Entry, priority int64) (*process.Process, error) {
	p := process.New(s.processes.Allocate(), parent, space, s.processor)
	if err := s.processes.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save process: %w", err)
	}
	if _, err := s.startThread(ctx, p, entry, priority); err != nil {
		_ = s.processes.Delete(ctx, p.ID)
		return nil, err
	}
	if parent >= 0 {
		if parentProcess, err := s.processes.Load(ctx, parent); err == nil {
			parentProcess.AddChild(p.ID)
		}
	}
	s.publisher.Publish(event.New(event.TypeSpawn, p.ID, 0).With("image", space.Image()))
	log.WithFields(log.Fields{"pid": p.ID, "parent": parent, "image": space.Image()}).Debug("process launched")
	return p, nil
}

// startThread adds a thread running entry to p and makes it ready.
func (s *Service) startThread(ctx context.Context, p *process.Process, entry Entry, priority int64) (*task.Thread, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry is required: %w", task.ErrInvalidArgument)
	}
	t := task.NewThread(p.ID, -1)
	if priority != 0 {
		if err := t.SetPriority(priority); err != nil {
			return nil, err
		}
	}
	if _, err := p.AddThread(t); err != nil {
		return nil, err
	}
	caller := &Caller{ctx: ctx, service: s, thread: t}
	t.Context().Go(func() { s.run(ctx, caller, entry) })
	s.scheduler.Add(t)
	return t, nil
}

// run executes a thread body and exits the thread with its result. A panic
// exits the thread with CodeError unless it reports ledger corruption.
func (s *Service) run(ctx context.Context, caller *Caller, entry Entry) {
	t := caller.thread
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && errors.Is(err, task.ErrCorrupted) {
			panic(r)
		}
		log.WithFields(log.Fields{"pid": t.Pid, "tid": t.Tid}).Errorf("thread panicked: %v", r)
		s.exit(ctx, t, CodeError)
	}()
	s.exit(ctx, t, entry(caller))
}

// Shutdown kills every parked thread context.
func (s *Service) Shutdown(ctx context.Context) error {
	processes, err := s.processes.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range processes {
		for _, t := range p.Threads() {
			s.scheduler.Remove(t)
			s.timer.Remove(t)
			t.Context().Kill()
		}
	}
	return nil
}

// exit turns t into a zombie and switches away for good. When t is the main
// thread the whole process exits with code. It does not return.
func (s *Service) exit(ctx context.Context, t *task.Thread, code int) {
	t.SetExit(code)
	s.timer.Remove(t)
	s.publisher.Publish(event.New(event.TypeExit, t.Pid, t.Tid).With("code", strconv.Itoa(code)))
	if t.Tid == 0 {
		if p, err := s.processes.Load(ctx, t.Pid); err == nil {
			s.exitProcess(ctx, p, t, code)
		}
	}
	s.processor.Exit(t)
}

// exitProcess makes p a zombie, abandons its other threads and hands its
// children to init.
func (s *Service) exitProcess(ctx context.Context, p *process.Process, main *task.Thread, code int) {
	if !p.Exit(code) {
		return
	}
	for _, t := range p.Threads() {
		if t == main {
			continue
		}
		s.scheduler.Remove(t)
		s.timer.Remove(t)
		if _, exited := t.ExitCode(); !exited {
			t.SetExit(code)
		}
		t.Context().Kill()
	}
	var initProcess *process.Process
	if s.initPid >= 0 && s.initPid != p.ID {
		initProcess, _ = s.processes.Load(ctx, s.initPid)
	}
	for _, pid := range p.TakeChildren() {
		child, err := s.processes.Load(ctx, pid)
		if err != nil {
			continue
		}
		if initProcess == nil {
			child.SetParent(-1)
			continue
		}
		child.SetParent(initProcess.ID)
		initProcess.AddChild(pid)
	}
	log.WithFields(log.Fields{"pid": p.ID, "code": code}).Debug("process exited")
}

func (s *Service) process(ctx context.Context, t *task.Thread) (*process.Process, error) {
	p, err := s.processes.Load(ctx, t.Pid)
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", t.Pid, err)
	}
	return p, nil
}

func (s *Service) startSpan(ctx context.Context, name string, t *task.Thread) (context.Context, *tracing.Span) {
	ctx, span := tracing.StartSpan(ctx, "syscall."+name, "SERVER")
	span.WithInts(map[string]int64{"pid": int64(t.Pid), "tid": int64(t.Tid)})
	return ctx, span
}
