package syscall

import (
	"context"
	"errors"

	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/runtime/process"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/tracing"
)

// Caller is the syscall surface handed to a running thread body. Its methods
// must only be called from that thread.
type Caller struct {
	ctx     context.Context
	service *Service
	thread  *task.Thread
}

// Context returns the kernel context the thread was started with.
func (c *Caller) Context() context.Context {
	return c.ctx
}

// Thread returns the calling thread.
func (c *Caller) Thread() *task.Thread {
	return c.thread
}

// begin counts syscall id and opens its span.
func (c *Caller) begin(id int, name string) *tracing.Span {
	c.thread.CountSyscall(id)
	_, span := c.service.startSpan(c.ctx, name, c.thread)
	return span
}

// call runs fn against the calling process and maps its error to a code.
func (c *Caller) call(id int, name string, fn func(p *process.Process) (int, error)) int {
	span := c.begin(id, name)
	p, err := c.service.process(c.ctx, c.thread)
	result := CodeError
	if err == nil {
		result, err = fn(p)
	}
	tracing.EndSpan(span, err)
	if err != nil {
		c.refused(name, err)
		return Code(err)
	}
	return result
}

func (c *Caller) refused(name string, err error) {
	if !errors.Is(err, task.ErrWouldDeadlock) {
		return
	}
	c.service.progress.Update(progress.Delta{Refused: 1})
	c.service.publisher.Publish(event.New(event.TypeRefuse, c.thread.Pid, c.thread.Tid).With("syscall", name))
}
