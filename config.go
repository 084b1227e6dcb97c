package kcore

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/kcore/service/messaging/memory"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/scheduler"
	"github.com/viant/kcore/service/timer"
)

// Config is a serialisable representation of the kernel configuration. The
// zero value of a nested section means its package defaults.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Timer     timer.Config     `json:"timer" yaml:"timer"`
	Init      InitConfig       `json:"init" yaml:"init"`
	Log       LogConfig        `json:"log" yaml:"log"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Events    EventsConfig     `json:"events" yaml:"events"`
}

// InitConfig configures the process adopting orphans.
type InitConfig struct {
	Image        string        `json:"image,omitempty" yaml:"image,omitempty"`
	ReapInterval time.Duration `json:"reapInterval,omitempty" yaml:"reapInterval,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// TracingConfig enables OpenTelemetry spans around dispatch and syscalls.
// An empty OutputFile writes spans to stdout.
type TracingConfig struct {
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// EventsConfig enables the kernel event stream.
type EventsConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Buffer  int  `json:"buffer,omitempty" yaml:"buffer,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: scheduler.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Timer:     timer.DefaultConfig(),
		Init:      InitConfig{Image: "init", ReapInterval: 10 * time.Millisecond},
		Log:       LogConfig{Level: log.InfoLevel.String()},
		Tracing:   TracingConfig{ServiceName: "kcore"},
		Events:    EventsConfig{Buffer: memory.DefaultConfig().QueueBuffer},
	}
}

// applyDefaults fills zero sections with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Scheduler.BigStride == 0 {
		c.Scheduler = defaults.Scheduler
	}
	if c.Processor.IdlePoll == 0 {
		c.Processor = defaults.Processor
	}
	if c.Timer.Tick == 0 {
		c.Timer = defaults.Timer
	}
	if c.Init.Image == "" {
		c.Init.Image = defaults.Init.Image
	}
	if c.Init.ReapInterval == 0 {
		c.Init.ReapInterval = defaults.Init.ReapInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = defaults.Events.Buffer
	}
}

// Validate returns the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if c.Processor.IdlePoll <= 0 {
		return fmt.Errorf("processor.idlePoll must be > 0")
	}
	if err := c.Timer.Validate(); err != nil {
		return fmt.Errorf("timer: %w", err)
	}
	if c.Init.ReapInterval <= 0 {
		return fmt.Errorf("init.reapInterval must be > 0")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration from any afs URL. ${env.KEY}
// expressions are expanded and missing sections take their defaults.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	config := &Config{}
	if err := meta.New(afs.New(), options...).Load(ctx, URL, config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
