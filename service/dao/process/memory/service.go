// Package memory is the in-memory process table. It is the arena owning every
// process by pid; pids are recycled lowest first once a process is reaped.
package memory

import (
	"context"

	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/service/dao"
	"github.com/viant/kcore/service/dao/criteria"
	"github.com/viant/kcore/service/dao/store"
	"github.com/viant/kcore/service/resource"
)

// Service implements dao.Service[int, process.Process].
type Service struct {
	*store.MemoryStore[int, process.Process]
	mux  syncutil.Mutex
	pids resource.Table[struct{}]
}

var _ dao.Service[int, process.Process] = (*Service)(nil)

// Allocate reserves the lowest free pid.
func (s *Service) Allocate() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pids.Insert(struct{}{})
}

func (s *Service) Save(ctx context.Context, p *process.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	s.mux.Lock()
	reserved := s.pids.Has(p.ID)
	s.mux.Unlock()
	if !reserved {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, p)
}

func (s *Service) Load(ctx context.Context, pid int) (*process.Process, error) {
	if pid < 0 {
		return nil, dao.ErrInvalidID
	}
	return s.MemoryStore.Load(ctx, pid)
}

// Delete removes the process and releases its pid.
func (s *Service) Delete(ctx context.Context, pid int) error {
	if pid < 0 {
		return dao.ErrInvalidID
	}
	if err := s.MemoryStore.Delete(ctx, pid); err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	_, err := s.pids.Remove(pid)
	return err
}

// List returns processes in pid order, filtered by the State parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*process.Process, 0, len(all))
	for _, p := range all {
		if criteria.FilterByState(p.State(), parameters) {
			out = append(out, p)
		}
	}
	return out, nil
}

func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[int, process.Process](
			func(p *process.Process) int { return p.ID },
			func(a, b int) bool { return a < b },
		),
	}
}
