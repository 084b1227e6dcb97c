package primitive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kcore/runtime/task"
)

// recordingHost records suspensions instead of switching contexts.
type recordingHost struct {
	yielded []int
	blocked []int
	woken   []int
	onYield func(t *task.Thread)
}

func (h *recordingHost) Yield(t *task.Thread) {
	h.yielded = append(h.yielded, t.Tid)
	if h.onYield != nil {
		h.onYield(t)
	}
}

func (h *recordingHost) Block(t *task.Thread) {
	h.blocked = append(h.blocked, t.Tid)
}

func (h *recordingHost) Wake(t *task.Thread) {
	t.SetStatus(task.StatusReady)
	h.woken = append(h.woken, t.Tid)
}

func threads(n int) []*task.Thread {
	result := make([]*task.Thread, n)
	for i := range result {
		result[i] = task.NewThread(1, i)
	}
	return result
}

func TestBlockingMutex_FIFOHandOff(t *testing.T) {
	host := &recordingHost{}
	m := NewBlockingMutex(host)
	ts := threads(3)

	m.Acquire(ts[0])
	assert.Same(t, ts[0], m.Owner())
	m.Acquire(ts[1])
	m.Acquire(ts[2])
	assert.Equal(t, []int{1, 2}, host.blocked)
	assert.Equal(t, task.StatusBlocked, ts[1].Status())
	assert.Equal(t, 2, m.Waiters())

	assert.Same(t, ts[1], m.Release(ts[0]))
	assert.Same(t, ts[1], m.Owner(), "ownership passes without unlocking")
	assert.Equal(t, task.StatusReady, ts[1].Status())
	assert.Same(t, ts[2], m.Release(ts[1]))
	assert.Nil(t, m.Release(ts[2]))
	assert.Nil(t, m.Owner())
	assert.Equal(t, []int{1, 2}, host.woken)

	m.Acquire(ts[0])
	assert.Same(t, ts[0], m.Owner())
	assert.Equal(t, KindBlocking, m.Kind())
	assert.True(t, m.Kind().HandsOff())
}

func TestSpinMutex_YieldsUntilFree(t *testing.T) {
	host := &recordingHost{}
	m := NewSpinMutex(host)
	ts := threads(2)

	m.Acquire(ts[0])
	assert.True(t, m.Locked())
	host.onYield = func(*task.Thread) {
		if len(host.yielded) == 3 {
			m.Release(ts[0])
		}
	}
	m.Acquire(ts[1])
	assert.Equal(t, []int{1, 1, 1}, host.yielded)
	assert.True(t, m.Locked())
	assert.Nil(t, m.Release(ts[1]))
	assert.False(t, m.Locked())
	assert.False(t, m.Kind().HandsOff())
}

func TestSemaphore(t *testing.T) {
	testCases := []struct {
		description  string
		initial      int
		acquires     int
		releases     int
		expectCount  int
		expectBlock  []int
		expectWoken  []int
		expectWaiter int
	}{
		{description: "within capacity", initial: 2, acquires: 2, expectCount: 0},
		{description: "over capacity blocks", initial: 1, acquires: 3, expectCount: 0, expectBlock: []int{1, 2}, expectWaiter: 2},
		{description: "release hands off", initial: 1, acquires: 3, releases: 1, expectCount: 0, expectBlock: []int{1, 2}, expectWoken: []int{1}, expectWaiter: 1},
		{description: "release without waiters", initial: 0, releases: 2, expectCount: 2},
		{description: "negative initial clamps", initial: -3, expectCount: 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			host := &recordingHost{}
			s := NewSemaphore(host, testCase.initial)
			ts := threads(testCase.acquires + 1)
			for i := 0; i < testCase.acquires; i++ {
				s.Acquire(ts[i])
			}
			for i := 0; i < testCase.releases; i++ {
				s.Release(ts[0])
			}
			assert.Equal(t, testCase.expectCount, s.Count())
			assert.Equal(t, testCase.expectBlock, host.blocked)
			assert.Equal(t, testCase.expectWoken, host.woken)
			assert.Equal(t, testCase.expectWaiter, s.Waiters())
		})
	}
}

func TestCondvar(t *testing.T) {
	host := &recordingHost{}
	cv := NewCondvar(host)
	ts := threads(3)

	assert.Nil(t, cv.Signal(), "signal with no waiter is a no-op")
	assert.Empty(t, host.woken)

	var released []int
	release := func(tid int) func() error {
		return func() error {
			released = append(released, tid)
			return nil
		}
	}
	assert.NoError(t, cv.Wait(ts[0], release(0)))
	assert.NoError(t, cv.Wait(ts[1], release(1)))
	assert.Equal(t, []int{0, 1}, released)
	assert.Equal(t, []int{0, 1}, host.blocked)
	assert.Equal(t, 2, cv.Waiters())

	assert.Same(t, ts[0], cv.Signal())
	assert.Equal(t, 1, cv.Waiters(), "signal wakes at most one waiter")
	assert.Same(t, ts[1], cv.Signal())
	assert.Nil(t, cv.Signal())

	failure := errors.New("not held")
	err := cv.Wait(ts[2], func() error { return failure })
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 0, cv.Waiters())
	assert.Equal(t, task.StatusRunning, ts[2].Status())
	assert.Equal(t, []int{0, 1}, host.blocked)
}

func TestWaitQueue_Remove(t *testing.T) {
	ts := threads(3)
	q := &WaitQueue{}
	for _, thread := range ts {
		q.Push(thread)
	}
	assert.True(t, q.Remove(ts[1]))
	assert.False(t, q.Remove(ts[1]))
	assert.Same(t, ts[0], q.Pop())
	assert.Same(t, ts[2], q.Pop())
	assert.Nil(t, q.Pop())
	assert.Equal(t, 0, q.Len())
}
