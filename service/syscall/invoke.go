package syscall

import (
	"fmt"

	"github.com/viant/kcore/runtime/task"
	"github.com/viant/toolbox"
)

// Invoke dispatches syscall id with loosely typed arguments, the way a trap
// handler decodes registers. Numeric arguments may be any type toolbox can
// convert to int; entries must be an Entry or a func(*Caller) int.
// SysWaitpid takes an optional *int that receives the reaped child's exit
// code.
func (c *Caller) Invoke(id int, args ...interface{}) (int, error) {
	ints := func(count int) ([]int, error) {
		if len(args) < count {
			return nil, fmt.Errorf("syscall %d expects %d arguments, got %d: %w", id, count, len(args), task.ErrInvalidArgument)
		}
		result := make([]int, count)
		for i := 0; i < count; i++ {
			value, err := toolbox.ToInt(args[i])
			if err != nil {
				return nil, fmt.Errorf("syscall %d argument %d: %w", id, i, task.ErrInvalidArgument)
			}
			result[i] = value
		}
		return result, nil
	}
	entry := func() (Entry, error) {
		if len(args) > 0 {
			switch fn := args[0].(type) {
			case Entry:
				return fn, nil
			case func(*Caller) int:
				return fn, nil
			}
		}
		return nil, fmt.Errorf("syscall %d expects an entry: %w", id, task.ErrInvalidArgument)
	}
	image := func() (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("syscall %d expects an image: %w", id, task.ErrInvalidArgument)
		}
		return toolbox.AsString(args[0]), nil
	}

	switch id {
	case SysExit:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		c.Exit(a[0])
		return CodeOK, nil
	case SysYield:
		return c.Yield(), nil
	case SysGetpid:
		return c.Getpid(), nil
	case SysGettid:
		return c.Gettid(), nil
	case SysGetTime:
		return c.GetTime(), nil
	case SysSleep:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.Sleep(a[0]), nil
	case SysSetPriority:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.SetPriority(int64(a[0])), nil
	case SysWaitpid:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		var code *int
		if len(args) > 1 {
			ptr, ok := args[1].(*int)
			if !ok {
				return CodeError, fmt.Errorf("syscall %d argument 1 must be *int: %w", id, task.ErrInvalidArgument)
			}
			code = ptr
		}
		pid, exitCode := c.Waitpid(a[0])
		if code != nil && pid >= 0 {
			*code = exitCode
		}
		return pid, nil
	case SysWaittid:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.Waittid(a[0]), nil
	case SysFork, SysThreadCreate:
		fn, err := entry()
		if err != nil {
			return CodeError, err
		}
		if id == SysFork {
			return c.Fork(fn), nil
		}
		return c.ThreadCreate(fn), nil
	case SysSpawn, SysExec:
		name, err := image()
		if err != nil {
			return CodeError, err
		}
		if id == SysSpawn {
			return c.Spawn(name), nil
		}
		return c.Exec(name), nil
	case SysEnableDeadlockDetect:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.EnableDeadlockDetect(a[0]), nil
	case SysMutexCreate:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.MutexCreate(a[0] != 0), nil
	case SysSemaphoreCreate:
		a, err := ints(1)
		if err != nil {
			return CodeError, err
		}
		return c.SemaphoreCreate(a[0]), nil
	case SysCondvarCreate:
		return c.CondvarCreate(), nil
	case SysCondvarWait:
		a, err := ints(2)
		if err != nil {
			return CodeError, err
		}
		return c.CondvarWait(a[0], a[1]), nil
	}

	unary := map[int]func(int) int{
		SysMutexLock:       c.MutexLock,
		SysMutexUnlock:     c.MutexUnlock,
		SysMutexRemove:     c.MutexRemove,
		SysSemaphoreUp:     c.SemaphoreUp,
		SysSemaphoreDown:   c.SemaphoreDown,
		SysSemaphoreRemove: c.SemaphoreRemove,
		SysCondvarSignal:   c.CondvarSignal,
		SysCondvarRemove:   c.CondvarRemove,
	}
	fn, ok := unary[id]
	if !ok {
		return CodeError, fmt.Errorf("unknown syscall %d: %w", id, task.ErrInvalidArgument)
	}
	a, err := ints(1)
	if err != nil {
		return CodeError, err
	}
	return fn(a[0]), nil
}
