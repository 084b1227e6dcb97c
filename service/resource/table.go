// Package resource provides slot tables addressed by small integer ids.
package resource

import (
	"fmt"

	"github.com/viant/kcore/runtime/task"
)

// Table stores optional handles by slot. Freed slots are reused lowest first,
// so ids stay dense.
type Table[T any] struct {
	slots []T
	used  []bool
}

// Insert stores v in the lowest free slot, appending when none is free.
func (t *Table[T]) Insert(v T) int {
	for i, used := range t.used {
		if !used {
			t.slots[i] = v
			t.used[i] = true
			return i
		}
	}
	t.slots = append(t.slots, v)
	t.used = append(t.used, true)
	return len(t.slots) - 1
}

// Get returns the handle stored at id.
func (t *Table[T]) Get(id int) (T, error) {
	var zero T
	if !t.Has(id) {
		return zero, fmt.Errorf("slot %d: %w", id, task.ErrInvalidHandle)
	}
	return t.slots[id], nil
}

// Has reports whether id names a live slot.
func (t *Table[T]) Has(id int) bool {
	return id >= 0 && id < len(t.slots) && t.used[id]
}

// Remove frees id and returns the handle it held.
func (t *Table[T]) Remove(id int) (T, error) {
	var zero T
	if !t.Has(id) {
		return zero, fmt.Errorf("slot %d: %w", id, task.ErrInvalidHandle)
	}
	v := t.slots[id]
	t.slots[id] = zero
	t.used[id] = false
	return v, nil
}

// Len returns the size of the id space, free slots included.
func (t *Table[T]) Len() int {
	return len(t.slots)
}

// Each visits live slots in id order until fn returns false.
func (t *Table[T]) Each(fn func(id int, v T) bool) {
	for i, used := range t.used {
		if used && !fn(i, t.slots[i]) {
			return
		}
	}
}
