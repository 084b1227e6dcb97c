package task

import "fmt"

const (
	// BigStride is the default numerator of a thread's pass.
	BigStride uint64 = 1 << 20

	// DefaultPriority is assigned to every new thread.
	DefaultPriority uint64 = 16

	// MinPriority is the smallest admissible priority. It bounds a pass to
	// BigStride/2, which keeps wraparound comparison sound.
	MinPriority = 2
)

// ValidatePriority rejects priorities below MinPriority.
func ValidatePriority(priority int64) error {
	if priority < MinPriority {
		return fmt.Errorf("priority %d below %d: %w", priority, MinPriority, ErrInvalidArgument)
	}
	return nil
}

// Pass returns the stride increment for priority under bigStride.
func Pass(bigStride, priority uint64) uint64 {
	if priority == 0 {
		priority = DefaultPriority
	}
	return bigStride / priority
}

// StrideLess reports whether stride a precedes stride b. The comparison
// tolerates counter wraparound as long as live strides differ by less than
// half the counter range.
func StrideLess(a, b uint64) bool {
	return int64(a-b) < 0
}
