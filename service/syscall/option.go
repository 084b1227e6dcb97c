package syscall

import (
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/loader"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/service/timer"
)

// Option represents syscall service option
type Option func(*Service)

// WithProcesses sets the process table
func WithProcesses(processes Table) Option {
	return func(s *Service) {
		s.processes = processes
	}
}

// WithProcessor sets the processor running threads
func WithProcessor(processor *processor.Service) Option {
	return func(s *Service) {
		s.processor = processor
	}
}

// WithScheduler sets the ready queue
func WithScheduler(scheduler *scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithTimer sets the timer queue used by sleep
func WithTimer(timer *timer.Service) Option {
	return func(s *Service) {
		s.timer = timer
	}
}

// WithLoader sets the image registry used by exec and spawn
func WithLoader(registry *loader.Registry[Entry]) Option {
	return func(s *Service) {
		s.loader = registry
	}
}

// WithPublisher sets the kernel event publisher
func WithPublisher(publisher *event.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithProgress sets the counter tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}
