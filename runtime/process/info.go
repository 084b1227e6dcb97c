package process

import (
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/ledger"
)

// ThreadInfo is a read-only view of a thread.
type ThreadInfo struct {
	Tid       int         `json:"tid" yaml:"tid"`
	Status    task.Status `json:"status" yaml:"status"`
	Priority  uint64      `json:"priority" yaml:"priority"`
	Stride    uint64      `json:"stride" yaml:"stride"`
	BeginTime uint64      `json:"beginTime,omitempty" yaml:"beginTime,omitempty"`
}

// Info is a read-only view of a process used for diagnostics dumps.
type Info struct {
	Pid        int              `json:"pid" yaml:"pid"`
	Parent     int              `json:"parent" yaml:"parent"`
	Image      string           `json:"image" yaml:"image"`
	State      string           `json:"state" yaml:"state"`
	ExitCode   int              `json:"exitCode" yaml:"exitCode"`
	Detection  bool             `json:"detection" yaml:"detection"`
	Children   []int            `json:"children,omitempty" yaml:"children,omitempty"`
	Threads    []ThreadInfo     `json:"threads,omitempty" yaml:"threads,omitempty"`
	Mutexes    *ledger.Snapshot `json:"mutexes,omitempty" yaml:"mutexes,omitempty"`
	Semaphores *ledger.Snapshot `json:"semaphores,omitempty" yaml:"semaphores,omitempty"`
}

// Info captures the current state of p.
func (p *Process) Info() *Info {
	p.mu.Lock()
	result := &Info{
		Pid:       p.ID,
		Parent:    p.parent,
		Image:     p.image,
		State:     p.state(),
		ExitCode:  p.exitCode,
		Detection: p.detect,
		Children:  append([]int(nil), p.children...),
	}
	p.threads.Each(func(tid int, t *task.Thread) bool {
		result.Threads = append(result.Threads, ThreadInfo{
			Tid:       tid,
			Status:    t.Status(),
			Priority:  t.Priority(),
			Stride:    t.Stride(),
			BeginTime: t.BeginTime(),
		})
		return true
	})
	p.mu.Unlock()
	result.Mutexes = p.mutexLedger.Snapshot()
	result.Semaphores = p.semaphoreLedger.Snapshot()
	return result
}
