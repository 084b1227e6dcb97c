package scheduler

import (
	"fmt"

	"github.com/viant/kcore/runtime/task"
)

// Config represents scheduler configuration
type Config struct {
	// BigStride is the numerator of every pass; pass = BigStride / priority.
	BigStride uint64 `json:"bigStride,omitempty" yaml:"bigStride,omitempty"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{BigStride: task.BigStride}
}

// Validate checks that the stride numerator leaves every admissible
// priority a non-zero pass.
func (c Config) Validate() error {
	if c.BigStride < task.MinPriority {
		return fmt.Errorf("bigStride %d is below minimum priority %d", c.BigStride, task.MinPriority)
	}
	return nil
}
