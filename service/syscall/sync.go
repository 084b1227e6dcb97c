package syscall

import (
	"fmt"

	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/ledger"
)

// MutexCreate allocates a mutex and returns its id. A blocking mutex parks
// waiters and hands ownership over in FIFO order; otherwise waiters spin by
// yielding.
func (c *Caller) MutexCreate(blocking bool) int {
	return c.call(SysMutexCreate, "mutex_create", func(p *process.Process) (int, error) {
		return p.CreateMutex(blocking)
	})
}

// MutexLock acquires mutex id, returning CodeDeadlock when detection refuses
// the request.
func (c *Caller) MutexLock(id int) int {
	return c.call(SysMutexLock, "mutex_lock", func(p *process.Process) (int, error) {
		lock, err := p.Mutex(id)
		if err != nil {
			return CodeError, err
		}
		return CodeOK, p.Ledger(ledger.ClassMutex).Acquire(c.thread, id, lock)
	})
}

// MutexUnlock releases mutex id held by the caller.
func (c *Caller) MutexUnlock(id int) int {
	return c.call(SysMutexUnlock, "mutex_unlock", func(p *process.Process) (int, error) {
		lock, err := p.Mutex(id)
		if err != nil {
			return CodeError, err
		}
		return CodeOK, p.Ledger(ledger.ClassMutex).Release(c.thread, id, lock)
	})
}

// MutexRemove frees mutex id so the slot can be reused.
func (c *Caller) MutexRemove(id int) int {
	return c.call(SysMutexRemove, "mutex_remove", func(p *process.Process) (int, error) {
		return CodeOK, p.RemoveMutex(id)
	})
}

// SemaphoreCreate allocates a semaphore with count units.
func (c *Caller) SemaphoreCreate(count int) int {
	return c.call(SysSemaphoreCreate, "semaphore_create", func(p *process.Process) (int, error) {
		return p.CreateSemaphore(count)
	})
}

// SemaphoreUp returns a unit of semaphore id, waking the earliest waiter.
func (c *Caller) SemaphoreUp(id int) int {
	return c.call(SysSemaphoreUp, "semaphore_up", func(p *process.Process) (int, error) {
		sem, err := p.Semaphore(id)
		if err != nil {
			return CodeError, err
		}
		return CodeOK, p.Ledger(ledger.ClassSemaphore).Release(c.thread, id, sem)
	})
}

// SemaphoreDown takes a unit of semaphore id, blocking while none is free.
func (c *Caller) SemaphoreDown(id int) int {
	return c.call(SysSemaphoreDown, "semaphore_down", func(p *process.Process) (int, error) {
		sem, err := p.Semaphore(id)
		if err != nil {
			return CodeError, err
		}
		return CodeOK, p.Ledger(ledger.ClassSemaphore).Acquire(c.thread, id, sem)
	})
}

// SemaphoreRemove frees semaphore id.
func (c *Caller) SemaphoreRemove(id int) int {
	return c.call(SysSemaphoreRemove, "semaphore_remove", func(p *process.Process) (int, error) {
		return CodeOK, p.RemoveSemaphore(id)
	})
}

// CondvarCreate allocates a condition variable.
func (c *Caller) CondvarCreate() int {
	return c.call(SysCondvarCreate, "condvar_create", func(p *process.Process) (int, error) {
		return p.CreateCondvar(), nil
	})
}

// CondvarSignal wakes the earliest waiter of condvar id, if any.
func (c *Caller) CondvarSignal(id int) int {
	return c.call(SysCondvarSignal, "condvar_signal", func(p *process.Process) (int, error) {
		cv, err := p.Condvar(id)
		if err != nil {
			return CodeError, err
		}
		cv.Signal()
		return CodeOK, nil
	})
}

// CondvarWait atomically releases mutex mutexID and waits on condvar id.
// Once signalled the caller reacquires the mutex before returning.
func (c *Caller) CondvarWait(id, mutexID int) int {
	return c.call(SysCondvarWait, "condvar_wait", func(p *process.Process) (int, error) {
		cv, err := p.Condvar(id)
		if err != nil {
			return CodeError, err
		}
		lock, err := p.Mutex(mutexID)
		if err != nil {
			return CodeError, err
		}
		mutexes := p.Ledger(ledger.ClassMutex)
		err = cv.Wait(c.thread, func() error {
			return mutexes.Release(c.thread, mutexID, lock)
		})
		if err != nil {
			return CodeError, err
		}
		return CodeOK, mutexes.Acquire(c.thread, mutexID, lock)
	})
}

// CondvarRemove frees condvar id; it fails while threads wait on it.
func (c *Caller) CondvarRemove(id int) int {
	return c.call(SysCondvarRemove, "condvar_remove", func(p *process.Process) (int, error) {
		return CodeOK, p.RemoveCondvar(id)
	})
}

// EnableDeadlockDetect turns deadlock avoidance off (0) or on (1) for the
// calling process.
func (c *Caller) EnableDeadlockDetect(flag int) int {
	return c.call(SysEnableDeadlockDetect, "enable_deadlock_detect", func(p *process.Process) (int, error) {
		switch flag {
		case 0, 1:
			p.SetDetection(flag == 1)
			return CodeOK, nil
		}
		return CodeError, fmt.Errorf("detection flag %d: %w", flag, task.ErrInvalidArgument)
	})
}
