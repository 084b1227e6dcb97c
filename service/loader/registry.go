// Package loader maps image names to runnable programs for exec and spawn.
package loader

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/dao"
)

// Program is a loadable image. E is the entry point signature understood by
// the syscall layer.
type Program[E any] struct {
	Name     string
	Entry    E
	Priority int64
}

// Registry holds programs by image name.
type Registry[E any] struct {
	programs map[string]*Program[E]
	mux      sync.RWMutex
}

// Register adds or replaces a program. A zero priority means the default.
func (r *Registry[E]) Register(program *Program[E]) error {
	if program == nil || program.Name == "" {
		return fmt.Errorf("program name is required: %w", task.ErrInvalidArgument)
	}
	if program.Priority != 0 {
		if err := task.ValidatePriority(program.Priority); err != nil {
			return fmt.Errorf("program %v: %w", program.Name, err)
		}
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.programs[program.Name] = program
	return nil
}

// Load returns the program registered under name.
func (r *Registry[E]) Load(name string) (*Program[E], error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	program, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("image %v: %w", name, dao.ErrNotFound)
	}
	return program, nil
}

// Names returns registered image names in sorted order.
func (r *Registry[E]) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an empty registry.
func New[E any]() *Registry[E] {
	return &Registry[E]{programs: make(map[string]*Program[E])}
}
