// Package ledger tracks resource units per thread and refuses requests that
// would make the system unsafe under the Banker's algorithm.
package ledger

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/primitive"
)

// Class separates mutex and semaphore bookkeeping; each process keeps one
// ledger per class.
type Class string

const (
	ClassMutex     Class = "mutex"
	ClassSemaphore Class = "semaphore"
)

// Ledger holds available, total, allocation and need matrices for one class
// of resources in one process. Rows are thread ids, columns resource ids.
type Ledger struct {
	mu         syncutil.Mutex
	pid        int
	class      Class
	host       primitive.Host
	detect     bool
	available  []int
	total      []int
	allocation [][]int
	need       [][]int
}

// New creates an empty ledger. The host is used to yield while waiting on a
// lock that does not hand off ownership.
func New(pid int, class Class, host primitive.Host) *Ledger {
	return &Ledger{pid: pid, class: class, host: host}
}

func (l *Ledger) Class() Class { return l.class }

// SetDetection toggles the safety check on contended requests.
func (l *Ledger) SetDetection(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detect = enabled
}

func (l *Ledger) Detection() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.detect
}

// AddThread opens a zeroed row for tid. A reused tid must have a clear row.
func (l *Ledger) AddThread(tid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tid < 0 {
		return fmt.Errorf("thread %d: %w", tid, task.ErrInvalidHandle)
	}
	for len(l.allocation) <= tid {
		l.allocation = append(l.allocation, make([]int, len(l.total)))
		l.need = append(l.need, make([]int, len(l.total)))
	}
	if l.rowBusy(tid) {
		return fmt.Errorf("%v ledger thread %d: %w", l.class, tid, task.ErrBusy)
	}
	return nil
}

// ReleaseThread verifies tid holds and awaits nothing so its id can be
// recycled.
func (l *Ledger) ReleaseThread(tid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tid < 0 || tid >= len(l.allocation) {
		return fmt.Errorf("thread %d: %w", tid, task.ErrInvalidHandle)
	}
	if l.rowBusy(tid) {
		return fmt.Errorf("%v ledger thread %d: %w", l.class, tid, task.ErrBusy)
	}
	return nil
}

// Open sets up column rid with units free units, zeroing it in every row.
// rid is either the next column or a previously closed one.
func (l *Ledger) Open(rid, units int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rid < 0 || rid > len(l.total) {
		return fmt.Errorf("%v %d: %w", l.class, rid, task.ErrInvalidHandle)
	}
	if units < 0 {
		return fmt.Errorf("%v %d units %d: %w", l.class, rid, units, task.ErrInvalidArgument)
	}
	if rid == len(l.total) {
		l.total = append(l.total, 0)
		l.available = append(l.available, 0)
		for tid := range l.allocation {
			l.allocation[tid] = append(l.allocation[tid], 0)
			l.need[tid] = append(l.need[tid], 0)
		}
	} else if l.columnBusy(rid) {
		return fmt.Errorf("%v %d: %w", l.class, rid, task.ErrBusy)
	}
	for tid := range l.allocation {
		l.allocation[tid][rid] = 0
		l.need[tid][rid] = 0
	}
	l.total[rid] = units
	l.available[rid] = units
	return nil
}

// Close retires column rid. It fails with ErrBusy while any unit is held or
// requested.
func (l *Ledger) Close(rid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rid < 0 || rid >= len(l.total) {
		return fmt.Errorf("%v %d: %w", l.class, rid, task.ErrInvalidHandle)
	}
	if l.columnBusy(rid) {
		return fmt.Errorf("%v %d: %w", l.class, rid, task.ErrBusy)
	}
	l.total[rid] = 0
	l.available[rid] = 0
	return nil
}

// Acquire obtains one unit of rid for t through lock. A free unit is granted
// at once. Otherwise the request is recorded as need and, with detection
// enabled, refused with ErrWouldDeadlock when granting it later could leave
// the system unsafe; a refused request leaves no trace. An admitted request
// waits on lock, which either hands the unit over on release or, for spin
// locks, is retried after each yield.
func (l *Ledger) Acquire(t *task.Thread, rid int, lock primitive.Lock) error {
	waiting := false
	for {
		l.mu.Lock()
		if err := l.checkIndex(t.Tid, rid); err != nil {
			if waiting {
				l.need[t.Tid][rid]--
			}
			l.mu.Unlock()
			return err
		}
		if l.available[rid] > 0 {
			l.available[rid]--
			l.allocation[t.Tid][rid]++
			if waiting {
				l.need[t.Tid][rid]--
			}
			l.mustBeConsistent()
			l.mu.Unlock()
			lock.Acquire(t)
			return nil
		}
		if !waiting {
			l.need[t.Tid][rid]++
			if l.detect && !l.safe() {
				l.need[t.Tid][rid]--
				l.mu.Unlock()
				log.WithFields(log.Fields{
					"pid":   l.pid,
					"tid":   t.Tid,
					"rid":   rid,
					"class": l.class,
				}).Warn("request refused: granting it could deadlock")
				return fmt.Errorf("%v %d for thread %d: %w", l.class, rid, t.Tid, task.ErrWouldDeadlock)
			}
			waiting = true
		}
		l.mu.Unlock()
		if lock.Kind().HandsOff() {
			lock.Acquire(t)
			return nil
		}
		l.host.Yield(t)
	}
}

// Release returns one unit of rid held by t. When the lock hands the unit to
// a waiter, the waiter's need becomes allocation in the same critical
// section. Releasing a mutex the thread does not hold is rejected without
// any state change; a semaphore up from a non-holder adds a unit.
func (l *Ledger) Release(t *task.Thread, rid int, lock primitive.Lock) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkIndex(t.Tid, rid); err != nil {
		return err
	}
	if l.allocation[t.Tid][rid] > 0 {
		l.allocation[t.Tid][rid]--
	} else if l.class == ClassSemaphore {
		l.total[rid]++
	} else {
		return fmt.Errorf("%v %d not held by thread %d: %w", l.class, rid, t.Tid, task.ErrInvalidArgument)
	}
	l.available[rid]++
	if woken := lock.Release(t); woken != nil {
		l.available[rid]--
		l.allocation[woken.Tid][rid]++
		l.need[woken.Tid][rid]--
	}
	l.mustBeConsistent()
	return nil
}

// Safe runs the Banker's safety algorithm over the current state.
func (l *Ledger) Safe() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.safe()
}

// Snapshot returns a deep copy of the matrices.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Check verifies the ledger invariants.
func (l *Ledger) Check() error {
	return l.Snapshot().Check()
}

// Held returns the units of rid allocated to tid.
func (l *Ledger) Held(tid, rid int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.checkIndex(tid, rid) != nil {
		return 0
	}
	return l.allocation[tid][rid]
}

func (l *Ledger) safe() bool {
	work := append([]int(nil), l.available...)
	finish := make([]bool, len(l.allocation))
	for progressed := true; progressed; {
		progressed = false
		for tid := range l.allocation {
			if finish[tid] || !fits(l.need[tid], work) {
				continue
			}
			for rid := range work {
				work[rid] += l.allocation[tid][rid]
			}
			finish[tid] = true
			progressed = true
		}
	}
	for _, done := range finish {
		if !done {
			return false
		}
	}
	return true
}

func fits(need, work []int) bool {
	for rid := range need {
		if need[rid] > work[rid] {
			return false
		}
	}
	return true
}

func (l *Ledger) checkIndex(tid, rid int) error {
	if tid < 0 || tid >= len(l.allocation) {
		return fmt.Errorf("%v ledger thread %d: %w", l.class, tid, task.ErrInvalidHandle)
	}
	if rid < 0 || rid >= len(l.total) {
		return fmt.Errorf("%v %d: %w", l.class, rid, task.ErrInvalidHandle)
	}
	return nil
}

func (l *Ledger) rowBusy(tid int) bool {
	for rid := range l.total {
		if l.allocation[tid][rid] != 0 || l.need[tid][rid] != 0 {
			return true
		}
	}
	return false
}

func (l *Ledger) columnBusy(rid int) bool {
	for tid := range l.allocation {
		if l.allocation[tid][rid] != 0 || l.need[tid][rid] != 0 {
			return true
		}
	}
	return l.available[rid] != l.total[rid]
}

func (l *Ledger) snapshot() *Snapshot {
	result := &Snapshot{
		Class:      l.class,
		Available:  append([]int(nil), l.available...),
		Total:      append([]int(nil), l.total...),
		Allocation: make([][]int, len(l.allocation)),
		Need:       make([][]int, len(l.need)),
	}
	for tid := range l.allocation {
		result.Allocation[tid] = append([]int(nil), l.allocation[tid]...)
		result.Need[tid] = append([]int(nil), l.need[tid]...)
	}
	return result
}

// mustBeConsistent panics when a mutation broke conservation. The caller
// holds l.mu.
func (l *Ledger) mustBeConsistent() {
	if err := l.snapshot().Check(); err != nil {
		panic(err)
	}
}
