// Package process holds per-process kernel state: threads, synchronization
// resources and their ledgers, lineage and exit status.
package process

import (
	"fmt"
	"time"

	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/syncutil"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/ledger"
	"github.com/viant/kcore/service/primitive"
	"github.com/viant/kcore/service/resource"
)

// Process state constants
const (
	StateRunning = "running"
	StateZombie  = "zombie"
)

// Process is a kernel process. All mutable fields are guarded by mu; ledger
// and primitive state are guarded by their own locks and are never touched
// while mu is held across a blocking call.
type Process struct {
	ID        int       `json:"pid"`
	CreatedAt time.Time `json:"createdAt"`

	mu       syncutil.Mutex
	host     primitive.Host
	parent   int
	children []int
	image    string
	space    AddressSpace
	zombie   bool
	exitCode int
	done     chan struct{}
	detect   bool

	threads         resource.Table[*task.Thread]
	mutexes         resource.Table[primitive.Lock]
	semaphores      resource.Table[*primitive.Semaphore]
	condvars        resource.Table[*primitive.Condvar]
	mutexLedger     *ledger.Ledger
	semaphoreLedger *ledger.Ledger
}

// New creates a running process with no threads.
func New(pid, parent int, space AddressSpace, host primitive.Host) *Process {
	return &Process{
		ID:              pid,
		CreatedAt:       clock.Now(),
		host:            host,
		parent:          parent,
		image:           space.Image(),
		space:           space,
		done:            make(chan struct{}),
		mutexLedger:     ledger.New(pid, ledger.ClassMutex, host),
		semaphoreLedger: ledger.New(pid, ledger.ClassSemaphore, host),
	}
}

// AddThread assigns t the lowest free tid and opens its ledger rows.
func (p *Process) AddThread(t *task.Thread) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tid := p.threads.Insert(t)
	t.Pid = p.ID
	t.Tid = tid
	for _, l := range p.ledgers() {
		if err := l.AddThread(tid); err != nil {
			_, _ = p.threads.Remove(tid)
			return -1, fmt.Errorf("process %d: failed to add thread: %w", p.ID, err)
		}
	}
	return tid, nil
}

// Thread returns the live thread tid.
func (p *Process) Thread(tid int) (*task.Thread, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threads.Get(tid)
}

// Threads returns live threads in tid order.
func (p *Process) Threads() []*task.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []*task.Thread
	p.threads.Each(func(_ int, t *task.Thread) bool {
		result = append(result, t)
		return true
	})
	return result
}

// ReapThread frees the slot of an exited thread so its tid can be reused.
// A thread that still holds or awaits units keeps its slot.
func (p *Process) ReapThread(tid int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, err := p.threads.Get(tid)
	if err != nil {
		return err
	}
	if _, exited := t.ExitCode(); !exited {
		return fmt.Errorf("thread %d still running: %w", tid, task.ErrBusy)
	}
	for _, l := range p.ledgers() {
		if err = l.ReleaseThread(tid); err != nil {
			return err
		}
	}
	_, err = p.threads.Remove(tid)
	return err
}

// CreateMutex allocates a mutex in the lowest free slot.
func (p *Process) CreateMutex(blocking bool) (int, error) {
	var lock primitive.Lock = primitive.NewSpinMutex(p.host)
	if blocking {
		lock = primitive.NewBlockingMutex(p.host)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.mutexes.Insert(lock)
	if err := p.mutexLedger.Open(id, 1); err != nil {
		_, _ = p.mutexes.Remove(id)
		return -1, err
	}
	return id, nil
}

func (p *Process) Mutex(id int) (primitive.Lock, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutexes.Get(id)
}

// RemoveMutex frees a mutex nobody holds or waits for.
func (p *Process) RemoveMutex(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutexes.Has(id) {
		return fmt.Errorf("mutex %d: %w", id, task.ErrInvalidHandle)
	}
	if err := p.mutexLedger.Close(id); err != nil {
		return err
	}
	_, err := p.mutexes.Remove(id)
	return err
}

// CreateSemaphore allocates a semaphore with count units.
func (p *Process) CreateSemaphore(count int) (int, error) {
	if count < 0 {
		return -1, fmt.Errorf("semaphore count %d: %w", count, task.ErrInvalidArgument)
	}
	sem := primitive.NewSemaphore(p.host, count)
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.semaphores.Insert(sem)
	if err := p.semaphoreLedger.Open(id, count); err != nil {
		_, _ = p.semaphores.Remove(id)
		return -1, err
	}
	return id, nil
}

func (p *Process) Semaphore(id int) (*primitive.Semaphore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.semaphores.Get(id)
}

// RemoveSemaphore frees a semaphore whose units are all free and unrequested.
func (p *Process) RemoveSemaphore(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.semaphores.Has(id) {
		return fmt.Errorf("semaphore %d: %w", id, task.ErrInvalidHandle)
	}
	if err := p.semaphoreLedger.Close(id); err != nil {
		return err
	}
	_, err := p.semaphores.Remove(id)
	return err
}

// CreateCondvar allocates a condition variable.
func (p *Process) CreateCondvar() int {
	cv := primitive.NewCondvar(p.host)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.condvars.Insert(cv)
}

func (p *Process) Condvar(id int) (*primitive.Condvar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.condvars.Get(id)
}

// RemoveCondvar frees a condition variable without waiters.
func (p *Process) RemoveCondvar(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cv, err := p.condvars.Get(id)
	if err != nil {
		return err
	}
	if cv.Waiters() > 0 {
		return fmt.Errorf("condvar %d: %w", id, task.ErrBusy)
	}
	_, err = p.condvars.Remove(id)
	return err
}

// Ledger returns the ledger for class.
func (p *Process) Ledger(class ledger.Class) *ledger.Ledger {
	if class == ledger.ClassSemaphore {
		return p.semaphoreLedger
	}
	return p.mutexLedger
}

func (p *Process) ledgers() []*ledger.Ledger {
	return []*ledger.Ledger{p.mutexLedger, p.semaphoreLedger}
}

// SetDetection toggles deadlock avoidance for both ledgers.
func (p *Process) SetDetection(enabled bool) {
	p.mu.Lock()
	p.detect = enabled
	p.mu.Unlock()
	for _, l := range p.ledgers() {
		l.SetDetection(enabled)
	}
}

func (p *Process) Detection() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detect
}

func (p *Process) Parent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parent
}

func (p *Process) SetParent(parent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parent = parent
}

// Children returns a copy of the child pids.
func (p *Process) Children() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.children...)
}

func (p *Process) AddChild(pid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.children = append(p.children, pid)
}

// RemoveChild drops pid from the children, reporting whether it was one.
func (p *Process) RemoveChild(pid int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, child := range p.children {
		if child == pid {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return true
		}
	}
	return false
}

// TakeChildren empties and returns the child list.
func (p *Process) TakeChildren() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	children := p.children
	p.children = nil
	return children
}

func (p *Process) Image() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.image
}

func (p *Process) Space() AddressSpace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.space
}

// Exec replaces the address space and image.
func (p *Process) Exec(space AddressSpace) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.space = space
	p.image = space.Image()
}

// Exit turns p into a zombie with code. Only the first call has effect.
func (p *Process) Exit(code int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.zombie {
		return false
	}
	p.zombie = true
	p.exitCode = code
	close(p.done)
	return true
}

// ExitCode returns the exit code and whether p has exited.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.zombie
}

// Done is closed when p exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// State returns StateRunning or StateZombie.
func (p *Process) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state()
}

func (p *Process) state() string {
	if p.zombie {
		return StateZombie
	}
	return StateRunning
}
