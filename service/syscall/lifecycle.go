package syscall

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/loader"
	"github.com/viant/kcore/tracing"
)

// TaskInfo describes the calling thread.
type TaskInfo struct {
	Status       task.Status    `json:"status" yaml:"status"`
	SyscallTimes map[int]uint32 `json:"syscallTimes" yaml:"syscallTimes"`
	// Time is the elapsed time in ms since the thread was first dispatched.
	Time uint64 `json:"time" yaml:"time"`
}

// Yield gives up the processor.
func (c *Caller) Yield() int {
	span := c.begin(SysYield, "yield")
	tracing.EndSpan(span, nil)
	c.service.processor.Yield(c.thread)
	return CodeOK
}

// Exit terminates the calling thread with code; a main thread takes the
// whole process with it. It does not return.
func (c *Caller) Exit(code int) {
	span := c.begin(SysExit, "exit")
	tracing.EndSpan(span, nil)
	c.service.exit(c.ctx, c.thread, code)
}

func (c *Caller) Getpid() int {
	c.thread.CountSyscall(SysGetpid)
	return c.thread.Pid
}

func (c *Caller) Gettid() int {
	c.thread.CountSyscall(SysGettid)
	return c.thread.Tid
}

// Sleep blocks the caller for at least ms milliseconds.
func (c *Caller) Sleep(ms int) int {
	span := c.begin(SysSleep, "sleep")
	if ms < 0 {
		err := fmt.Errorf("sleep %d ms: %w", ms, task.ErrInvalidArgument)
		tracing.EndSpan(span, err)
		return CodeError
	}
	tracing.EndSpan(span, nil)
	if ms == 0 {
		c.service.processor.Yield(c.thread)
		return CodeOK
	}
	c.thread.SetStatus(task.StatusBlocked)
	c.service.timer.Add(clock.Millis()+uint64(ms), c.thread)
	c.service.processor.Block(c.thread)
	return CodeOK
}

// SleepFor is Sleep with a duration.
func (c *Caller) SleepFor(d time.Duration) int {
	return c.Sleep(int(d / time.Millisecond))
}

// Fork creates a child process with a copy of the caller's address space
// whose main thread runs child at the caller's priority. It returns the
// child pid.
func (c *Caller) Fork(child Entry) int {
	return c.call(SysFork, "fork", func(p *process.Process) (int, error) {
		forked, err := c.service.launch(c.ctx, p.ID, p.Space().Clone(), child, int64(c.thread.Priority()))
		if err != nil {
			return CodeError, err
		}
		return forked.ID, nil
	})
}

// Spawn creates a child process running image and returns its pid.
func (c *Caller) Spawn(image string) int {
	return c.call(SysSpawn, "spawn", func(p *process.Process) (int, error) {
		program, err := c.service.loader.Load(image)
		if err != nil {
			return CodeError, err
		}
		spawned, err := c.service.launch(c.ctx, p.ID, process.NewSpace(image), program.Entry, program.Priority)
		if err != nil {
			return CodeError, err
		}
		return spawned.ID, nil
	})
}

// Exec replaces the caller's image and runs its entry on the calling
// thread. It only returns, with CodeError, when the image is unknown or the
// process has other live threads.
func (c *Caller) Exec(image string) int {
	span := c.begin(SysExec, "exec")
	p, err := c.service.process(c.ctx, c.thread)
	var program *loader.Program[Entry]
	if err == nil {
		program, err = c.service.loader.Load(image)
	}
	if err == nil && len(p.Threads()) > 1 {
		err = fmt.Errorf("exec %v with %d threads: %w", image, len(p.Threads()), task.ErrBusy)
	}
	tracing.EndSpan(span, err)
	if err != nil {
		return CodeError
	}
	p.Exec(process.NewSpace(image))
	if program.Priority != 0 {
		_ = c.thread.SetPriority(program.Priority)
	}
	log.WithFields(log.Fields{"pid": p.ID, "image": image}).Debug("exec")
	c.service.exit(c.ctx, c.thread, program.Entry(c))
	return CodeOK
}

// Waitpid reaps an exited child. pid -1 matches any child. It returns the
// child pid and exit code, CodeError when no child matches and CodeRunning
// when matching children are still running.
func (c *Caller) Waitpid(pid int) (int, int) {
	span := c.begin(SysWaitpid, "waitpid")
	p, err := c.service.process(c.ctx, c.thread)
	if err != nil {
		tracing.EndSpan(span, err)
		return CodeError, 0
	}
	found := false
	for _, childPid := range p.Children() {
		if pid != -1 && childPid != pid {
			continue
		}
		found = true
		child, err := c.service.processes.Load(c.ctx, childPid)
		if err != nil {
			continue
		}
		code, exited := child.ExitCode()
		if !exited {
			continue
		}
		p.RemoveChild(childPid)
		err = c.service.processes.Delete(c.ctx, childPid)
		tracing.EndSpan(span, err)
		c.service.publisher.Publish(event.New(event.TypeReap, childPid, 0).With("parent", fmt.Sprint(p.ID)))
		return childPid, code
	}
	tracing.EndSpan(span, nil)
	if !found {
		return CodeError, 0
	}
	return CodeRunning, 0
}

// ThreadCreate starts a thread running entry in the caller's process and
// returns its tid.
func (c *Caller) ThreadCreate(entry Entry) int {
	return c.call(SysThreadCreate, "thread_create", func(p *process.Process) (int, error) {
		t, err := c.service.startThread(c.ctx, p, entry, 0)
		if err != nil {
			return CodeError, err
		}
		return t.Tid, nil
	})
}

// Waittid returns the exit code of thread tid and frees its slot. It returns
// CodeError for the caller itself or an unknown tid and CodeRunning while
// the thread runs. A thread that exited holding units keeps its slot.
func (c *Caller) Waittid(tid int) int {
	return c.call(SysWaittid, "waittid", func(p *process.Process) (int, error) {
		if tid == c.thread.Tid {
			return CodeError, fmt.Errorf("thread %d waiting for itself: %w", tid, task.ErrInvalidArgument)
		}
		t, err := p.Thread(tid)
		if err != nil {
			return CodeError, err
		}
		code, exited := t.ExitCode()
		if !exited {
			return CodeRunning, nil
		}
		if err = p.ReapThread(tid); err != nil {
			log.WithFields(log.Fields{"pid": p.ID, "tid": tid}).Debugf("thread slot retained: %v", err)
		}
		return code, nil
	})
}

// SetPriority sets the caller's priority and returns it, CodeError when prio
// is below the minimum.
func (c *Caller) SetPriority(prio int64) int {
	return c.call(SysSetPriority, "set_priority", func(*process.Process) (int, error) {
		if err := c.thread.SetPriority(prio); err != nil {
			return CodeError, err
		}
		return int(prio), nil
	})
}

// GetTime returns the ms elapsed since boot.
func (c *Caller) GetTime() int {
	c.thread.CountSyscall(SysGetTime)
	return int(clock.Since(c.service.bootTime))
}

// TaskInfo reports the caller's status, syscall counts and running time.
func (c *Caller) TaskInfo() *TaskInfo {
	c.thread.CountSyscall(SysTaskInfo)
	return &TaskInfo{
		Status:       task.StatusRunning,
		SyscallTimes: c.thread.SyscallTimes(),
		Time:         clock.Since(c.thread.BeginTime()),
	}
}
