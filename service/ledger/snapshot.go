package ledger

import (
	"fmt"

	"github.com/viant/kcore/runtime/task"
)

// Snapshot is a deep copy of a ledger's matrices.
type Snapshot struct {
	Class      Class   `json:"class" yaml:"class"`
	Available  []int   `json:"available" yaml:"available"`
	Total      []int   `json:"total" yaml:"total"`
	Allocation [][]int `json:"allocation" yaml:"allocation"`
	Need       [][]int `json:"need" yaml:"need"`
}

// Check verifies shape and conservation: for every resource the free units
// plus the units allocated to threads equal the total.
func (s *Snapshot) Check() error {
	resources := len(s.Total)
	if len(s.Available) != resources {
		return fmt.Errorf("%v: available has %d columns, expected %d: %w", s.Class, len(s.Available), resources, task.ErrCorrupted)
	}
	if len(s.Allocation) != len(s.Need) {
		return fmt.Errorf("%v: %d allocation rows vs %d need rows: %w", s.Class, len(s.Allocation), len(s.Need), task.ErrCorrupted)
	}
	for tid := range s.Allocation {
		if len(s.Allocation[tid]) != resources || len(s.Need[tid]) != resources {
			return fmt.Errorf("%v: thread %d row is not %d wide: %w", s.Class, tid, resources, task.ErrCorrupted)
		}
	}
	for rid := 0; rid < resources; rid++ {
		if s.Available[rid] < 0 {
			return fmt.Errorf("%v: resource %d available %d: %w", s.Class, rid, s.Available[rid], task.ErrCorrupted)
		}
		held := 0
		for tid := range s.Allocation {
			if s.Allocation[tid][rid] < 0 || s.Need[tid][rid] < 0 {
				return fmt.Errorf("%v: thread %d resource %d negative entry: %w", s.Class, tid, rid, task.ErrCorrupted)
			}
			held += s.Allocation[tid][rid]
		}
		if s.Available[rid]+held != s.Total[rid] {
			return fmt.Errorf("%v: resource %d available %d + held %d != total %d: %w", s.Class, rid, s.Available[rid], held, s.Total[rid], task.ErrCorrupted)
		}
	}
	return nil
}
