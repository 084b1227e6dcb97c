package processor

import (
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/scheduler"
)

// Option represents processor option
type Option func(*Service)

// WithScheduler sets the ready queue
func WithScheduler(scheduler *scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithConfig sets the processor configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
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
