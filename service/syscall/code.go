package syscall

import (
	"errors"

	"github.com/viant/kcore/runtime/task"
)

// Return codes shared by every syscall. Non-negative values are results or
// handles.
const (
	CodeOK       = 0
	CodeError    = -1
	CodeRunning  = -2
	CodeDeadlock = -0xDEAD
)

// Syscall ids.
const (
	SysExit                 = 93
	SysSleep                = 101
	SysYield                = 124
	SysSetPriority          = 140
	SysGetTime              = 169
	SysGetpid               = 172
	SysFork                 = 220
	SysExec                 = 221
	SysWaitpid              = 260
	SysSpawn                = 400
	SysTaskInfo             = 410
	SysEnableDeadlockDetect = 469
	SysThreadCreate         = 1000
	SysGettid               = 1001
	SysWaittid              = 1002
	SysMutexCreate          = 1010
	SysMutexLock            = 1011
	SysMutexUnlock          = 1012
	SysMutexRemove          = 1013
	SysSemaphoreCreate      = 1020
	SysSemaphoreUp          = 1021
	SysSemaphoreDown        = 1022
	SysSemaphoreRemove      = 1023
	SysCondvarCreate        = 1030
	SysCondvarSignal        = 1031
	SysCondvarWait          = 1032
	SysCondvarRemove        = 1033
)

// Code maps an error to its syscall return value.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, task.ErrWouldDeadlock):
		return CodeDeadlock
	default:
		return CodeError
	}
}
