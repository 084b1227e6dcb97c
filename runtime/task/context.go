package task

import "sync"

// Context is a saved execution context backed by a goroutine. The goroutine
// runs only while it holds the processor; otherwise it is parked on resume.
type Context struct {
	resume chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewContext creates a parked context.
func NewContext() *Context {
	return &Context{
		resume: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Go starts body on the context's goroutine. The body does not run until the
// context is first switched to, and never runs if the context is killed first.
func (c *Context) Go(body func()) {
	go func() {
		if !c.park() {
			return
		}
		body()
	}()
}

// SwitchTo resumes next and parks c until c is resumed again. It returns
// false when c was killed while parked; the caller must then unwind.
func (c *Context) SwitchTo(next *Context) bool {
	next.resume <- struct{}{}
	return c.park()
}

// Leave resumes next without parking c. The calling goroutine must not touch
// kernel state afterwards.
func (c *Context) Leave(next *Context) {
	next.resume <- struct{}{}
}

// Kill abandons the context. A parked goroutine observes it on its next
// resume attempt.
func (c *Context) Kill() {
	c.once.Do(func() { close(c.done) })
}

// Killed reports whether Kill was called.
func (c *Context) Killed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Context) park() bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case <-c.resume:
		return true
	case <-c.done:
		return false
	}
}
