package processor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kcore/progress"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/scheduler"
)

type harness struct {
	srv      *Service
	sched    *scheduler.Service
	tracker  *progress.Progress
	trace    []string
	pending  int
	finished chan struct{}
}

func newHarness(t *testing.T) *harness {
	sched, err := scheduler.New()
	require.NoError(t, err)
	tracker := progress.New("test", time.Now())
	srv, err := New(WithScheduler(sched), WithProgress(tracker), WithConfig(Config{IdlePoll: time.Millisecond}))
	require.NoError(t, err)
	return &harness{srv: srv, sched: sched, tracker: tracker, finished: make(chan struct{})}
}

// spawn queues a thread running body; the last thread to finish closes h.finished.
func (h *harness) spawn(tid int, body func(thread *task.Thread)) *task.Thread {
	thread := task.NewThread(1, tid)
	h.pending++
	thread.Context().Go(func() {
		body(thread)
		thread.SetExit(0)
		h.pending--
		if h.pending == 0 {
			close(h.finished)
		}
		h.srv.Exit(thread)
	})
	h.sched.Add(thread)
	return thread
}

func (h *harness) run(t *testing.T) {
	require.NoError(t, h.srv.Start(context.Background()))
	select {
	case <-h.finished:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "threads did not finish")
	}
	h.srv.Shutdown()
}

func TestService_YieldAlternates(t *testing.T) {
	h := newHarness(t)
	var current []bool
	for i, name := range []string{"A", "B"} {
		name := name
		h.spawn(i, func(thread *task.Thread) {
			for round := 0; round < 3; round++ {
				h.trace = append(h.trace, name)
				current = append(current, h.srv.Current() == thread)
				h.srv.Yield(thread)
			}
		})
	}
	h.run(t)

	assert.Equal(t, []string{"A", "B", "A", "B", "A", "B"}, h.trace)
	for _, ok := range current {
		assert.True(t, ok)
	}
	snapshot := h.tracker.Snapshot()
	assert.Equal(t, 8, snapshot.Dispatched)
	assert.Equal(t, 6, snapshot.Yielded)
	assert.Equal(t, 2, snapshot.Exited)
	assert.Nil(t, h.srv.Current())
}

func TestService_BlockWake(t *testing.T) {
	h := newHarness(t)
	var a *task.Thread
	a = h.spawn(0, func(thread *task.Thread) {
		h.trace = append(h.trace, "A1")
		thread.SetStatus(task.StatusBlocked)
		h.srv.Block(thread)
		h.trace = append(h.trace, "A2")
	})
	h.spawn(1, func(thread *task.Thread) {
		h.trace = append(h.trace, "B1")
		assert.Equal(t, task.StatusBlocked, a.Status())
		h.srv.Wake(a)
		h.trace = append(h.trace, "B2")
		h.srv.Yield(thread)
		h.trace = append(h.trace, "B3")
	})
	h.run(t)

	assert.Equal(t, []string{"A1", "B1", "B2", "A2", "B3"}, h.trace)
	snapshot := h.tracker.Snapshot()
	assert.Equal(t, 1, snapshot.Blocked)
	assert.Equal(t, 1, snapshot.Woken)
	assert.NotZero(t, a.BeginTime())
}

func TestService_SkipsKilledThreads(t *testing.T) {
	h := newHarness(t)
	killed := task.NewThread(1, 9)
	killed.Context().Go(func() {
		h.trace = append(h.trace, "killed")
	})
	killed.Context().Kill()
	h.sched.Add(killed)
	h.spawn(0, func(*task.Thread) {
		h.trace = append(h.trace, "alive")
	})
	h.srv.Wake(killed)
	assert.Equal(t, 2, h.sched.Len(), "wake ignores killed threads")
	h.run(t)
	assert.Equal(t, []string{"alive"}, h.trace)
}

func TestNew_Validation(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
	sched, err := scheduler.New()
	require.NoError(t, err)
	_, err = New(WithScheduler(sched), WithConfig(Config{}))
	assert.Error(t, err)

	srv, err := New(WithScheduler(sched))
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	assert.Error(t, srv.Start(context.Background()))
	srv.Shutdown()
}
