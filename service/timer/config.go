package timer

import (
	"fmt"
	"time"
)

// Config represents timer queue configuration
type Config struct {
	// Tick is how often due sleepers are woken.
	Tick time.Duration `json:"tick,omitempty" yaml:"tick,omitempty"`
}

// DefaultConfig returns the default timer configuration
func DefaultConfig() Config {
	return Config{Tick: time.Millisecond}
}

func (c Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("timer tick must be positive, got %v", c.Tick)
	}
	return nil
}
