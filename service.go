package kcore

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/idgen"
	"github.com/viant/kcore/progress"
	pmemory "github.com/viant/kcore/service/dao/process/memory"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/loader"
	"github.com/viant/kcore/service/messaging"
	mmemory "github.com/viant/kcore/service/messaging/memory"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/service/syscall"
	"github.com/viant/kcore/service/timer"
	"github.com/viant/kcore/tracing"
)

type program struct {
	name     string
	entry    syscall.Entry
	priority int64
}

// Service wires the kernel: ready queue, processor, timer, process table and
// syscalls.
type Service struct {
	config        *Config
	runtime       *Runtime
	processes     syscall.Table
	eventQueue    messaging.Queue[event.Event]
	programs      []program
	initEntry     syscall.Entry
	metaFsOptions []storage.Option
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.applyDefaults()
	if err := s.config.Validate(); err != nil {
		return err
	}
	level, _ := log.ParseLevel(s.config.Log.Level)
	log.SetLevel(level)
	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Tracing.ServiceName, s.config.Tracing.ServiceVersion, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	s.ensureBaseSetup()

	r := s.runtime
	var err error
	r.scheduler, err = scheduler.New(scheduler.WithConfig(s.config.Scheduler))
	if err != nil {
		return err
	}
	r.processor, err = processor.New(
		processor.WithScheduler(r.scheduler),
		processor.WithConfig(s.config.Processor),
		processor.WithPublisher(r.publisher),
		processor.WithProgress(r.progress),
	)
	if err != nil {
		return err
	}
	if r.timer, err = timer.New(r.processor, s.config.Timer); err != nil {
		return err
	}
	for _, p := range s.programs {
		if err = r.loader.Register(&loader.Program[syscall.Entry]{Name: p.name, Entry: p.entry, Priority: p.priority}); err != nil {
			return err
		}
	}
	r.syscall, err = syscall.New(
		syscall.WithProcesses(r.processes),
		syscall.WithProcessor(r.processor),
		syscall.WithScheduler(r.scheduler),
		syscall.WithTimer(r.timer),
		syscall.WithLoader(r.loader),
		syscall.WithPublisher(r.publisher),
		syscall.WithProgress(r.progress),
	)
	return err
}

func (s *Service) ensureBaseSetup() {
	r := s.runtime
	r.config = s.config
	r.meta = meta.New(afs.New(), s.metaFsOptions...)
	r.loader = loader.New[syscall.Entry]()
	r.progress = progress.New(idgen.New(), clock.Now())
	r.initEntry = s.initEntry
	if r.initEntry == nil {
		r.initEntry = reaper(s.config.Init.ReapInterval)
	}
	if s.processes == nil {
		s.processes = pmemory.New()
	}
	r.processes = s.processes
	if s.eventQueue == nil && s.config.Events.Enabled {
		s.eventQueue = mmemory.NewQueue[event.Event](mmemory.Config{QueueBuffer: s.config.Events.Buffer, MaxRetries: 1})
	}
	if s.eventQueue != nil {
		r.publisher = event.NewPublisher(s.eventQueue)
	}
}

// Runtime returns the kernel runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// New creates a kernel service
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
