package kcore

import (
	"github.com/viant/afs/storage"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/messaging"
	"github.com/viant/kcore/service/syscall"
	"github.com/viant/kcore/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents kernel service option
type Option func(s *Service)

// WithConfig sets the kernel configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithEventQueue sets the queue carrying kernel events. It enables the
// event stream.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) {
		s.eventQueue = queue
	}
}

// WithProcessTable sets the process table
func WithProcessTable(table syscall.Table) Option {
	return func(s *Service) {
		s.processes = table
	}
}

// WithProgram registers a program image available to spawn, exec and
// StartProcess.
func WithProgram(name string, entry syscall.Entry, priority int64) Option {
	return func(s *Service) {
		s.programs = append(s.programs, program{name: name, entry: entry, priority: priority})
	}
}

// WithInit replaces the default init program, which reaps orphans.
func WithInit(entry syscall.Entry) Option {
	return func(s *Service) {
		s.initEntry = entry
	}
}

// WithMetaFsOptions sets storage options used by config loading and dumps
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
