package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/primitive"
)

// fakeHost never switches: Block returns immediately so a test can play
// every thread in turn.
type fakeHost struct {
	blocked []int
	onYield func(t *task.Thread)
}

func (h *fakeHost) Yield(t *task.Thread) {
	if h.onYield != nil {
		h.onYield(t)
	}
}
func (h *fakeHost) Block(t *task.Thread) { h.blocked = append(h.blocked, t.Tid) }
func (h *fakeHost) Wake(t *task.Thread)  { t.SetStatus(task.StatusReady) }

type fixture struct {
	host    *fakeHost
	ledger  *Ledger
	threads []*task.Thread
	locks   []primitive.Lock
}

func newMutexFixture(t *testing.T, threads, mutexes int, detect bool) *fixture {
	f := &fixture{host: &fakeHost{}}
	f.ledger = New(1, ClassMutex, f.host)
	f.ledger.SetDetection(detect)
	for i := 0; i < threads; i++ {
		require.NoError(t, f.ledger.AddThread(i))
		f.threads = append(f.threads, task.NewThread(1, i))
	}
	for i := 0; i < mutexes; i++ {
		require.NoError(t, f.ledger.Open(i, 1))
		f.locks = append(f.locks, primitive.NewBlockingMutex(f.host))
	}
	return f
}

func (f *fixture) acquire(tid, rid int) error {
	return f.ledger.Acquire(f.threads[tid], rid, f.locks[rid])
}

func (f *fixture) release(tid, rid int) error {
	return f.ledger.Release(f.threads[tid], rid, f.locks[rid])
}

func TestLedger_CircularWaitRefused(t *testing.T) {
	f := newMutexFixture(t, 2, 2, true)
	require.NoError(t, f.acquire(0, 0))
	require.NoError(t, f.acquire(1, 1))

	assert.NoError(t, f.acquire(0, 1), "first cross request is still safe")
	assert.Equal(t, []int{0}, f.host.blocked)

	before := f.ledger.Snapshot()
	err := f.acquire(1, 0)
	assert.True(t, errors.Is(err, task.ErrWouldDeadlock))
	assert.Equal(t, before, f.ledger.Snapshot(), "refusal leaves no trace")
	assert.Equal(t, []int{0}, f.host.blocked)

	require.NoError(t, f.release(1, 1))
	snapshot := f.ledger.Snapshot()
	assert.Equal(t, [][]int{{1, 1}, {0, 0}}, snapshot.Allocation, "unit handed to the waiter")
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, snapshot.Need)
	assert.Equal(t, []int{0, 0}, snapshot.Available)
	assert.NoError(t, f.ledger.Check())
}

func TestLedger_Detection(t *testing.T) {
	testCases := []struct {
		description string
		detect      bool
		circular    bool
		expectErr   error
	}{
		{description: "circular with detection", detect: true, circular: true, expectErr: task.ErrWouldDeadlock},
		{description: "circular without detection", detect: false, circular: true},
		{description: "chain with detection", detect: true, circular: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f := newMutexFixture(t, 2, 2, testCase.detect)
			require.NoError(t, f.acquire(0, 0))
			if testCase.circular {
				require.NoError(t, f.acquire(1, 1))
				require.NoError(t, f.acquire(0, 1))
			}
			err := f.acquire(1, 0)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, f.ledger.Check())
		})
	}
}

func TestLedger_ReleaseNotHeld(t *testing.T) {
	f := newMutexFixture(t, 2, 1, false)
	require.NoError(t, f.acquire(0, 0))
	before := f.ledger.Snapshot()
	err := f.release(1, 0)
	assert.ErrorIs(t, err, task.ErrInvalidArgument)
	assert.Equal(t, before, f.ledger.Snapshot())

	assert.ErrorIs(t, f.ledger.Acquire(f.threads[0], 5, f.locks[0]), task.ErrInvalidHandle)
	assert.ErrorIs(t, f.ledger.Release(f.threads[0], -1, f.locks[0]), task.ErrInvalidHandle)
}

func TestLedger_SemaphoreUpFromNonHolder(t *testing.T) {
	host := &fakeHost{}
	l := New(1, ClassSemaphore, host)
	producer, consumer := task.NewThread(1, 0), task.NewThread(1, 1)
	require.NoError(t, l.AddThread(0))
	require.NoError(t, l.AddThread(1))
	require.NoError(t, l.Open(0, 0))
	sem := primitive.NewSemaphore(host, 0)

	require.NoError(t, l.Acquire(consumer, 0, sem))
	assert.Equal(t, []int{1}, host.blocked)
	require.NoError(t, l.Release(producer, 0, sem))

	snapshot := l.Snapshot()
	assert.Equal(t, []int{1}, snapshot.Total)
	assert.Equal(t, []int{0}, snapshot.Available)
	assert.Equal(t, 1, l.Held(1, 0))
	assert.NoError(t, l.Check())

	require.NoError(t, l.Release(consumer, 0, sem))
	assert.Equal(t, 1, sem.Count())
	assert.NoError(t, l.Check())
}

func TestLedger_SemaphoreMintedTotal(t *testing.T) {
	host := &fakeHost{}
	l := New(1, ClassSemaphore, host)
	l.SetDetection(true)
	var threads []*task.Thread
	var sems []*primitive.Semaphore
	for i := 0; i < 2; i++ {
		require.NoError(t, l.AddThread(i))
		threads = append(threads, task.NewThread(1, i))
		require.NoError(t, l.Open(i, 1))
		sems = append(sems, primitive.NewSemaphore(host, 1))
	}
	down := func(tid, rid int) error { return l.Acquire(threads[tid], rid, sems[rid]) }
	up := func(tid, rid int) error { return l.Release(threads[tid], rid, sems[rid]) }

	require.NoError(t, down(0, 0))
	require.NoError(t, down(1, 1))
	require.NoError(t, down(0, 1))
	assert.Equal(t, []int{0}, host.blocked)
	assert.ErrorIs(t, down(1, 0), task.ErrWouldDeadlock)

	require.NoError(t, up(1, 0), "up from a non-holder mints a unit")
	snapshot := l.Snapshot()
	assert.Equal(t, []int{2, 1}, snapshot.Total)
	assert.Equal(t, []int{1, 0}, snapshot.Available)
	assert.NoError(t, l.Check())

	require.NoError(t, down(1, 0), "minted unit is granted at once")
	assert.True(t, l.Safe())
	require.NoError(t, up(1, 1))
	snapshot = l.Snapshot()
	assert.Equal(t, []int{2, 1}, snapshot.Total)
	assert.Equal(t, []int{0, 0}, snapshot.Available)
	assert.Equal(t, [][]int{{1, 1}, {1, 0}}, snapshot.Allocation)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, snapshot.Need)
	assert.NoError(t, l.Check())
}

func TestLedger_SpinSettlesOnAcquire(t *testing.T) {
	host := &fakeHost{}
	l := New(1, ClassMutex, host)
	require.NoError(t, l.AddThread(0))
	require.NoError(t, l.AddThread(1))
	require.NoError(t, l.Open(0, 1))
	spin := primitive.NewSpinMutex(host)
	holder, spinner := task.NewThread(1, 0), task.NewThread(1, 1)

	require.NoError(t, l.Acquire(holder, 0, spin))
	yields := 0
	host.onYield = func(*task.Thread) {
		yields++
		snapshot := l.Snapshot()
		assert.Equal(t, 1, snapshot.Need[1][0])
		if yields == 2 {
			require.NoError(t, l.Release(holder, 0, spin))
		}
	}
	require.NoError(t, l.Acquire(spinner, 0, spin))
	assert.Equal(t, 2, yields)
	assert.True(t, spin.Locked())
	snapshot := l.Snapshot()
	assert.Equal(t, [][]int{{0}, {1}}, snapshot.Allocation)
	assert.Equal(t, [][]int{{0}, {0}}, snapshot.Need)
	assert.NoError(t, l.Check())
}

func TestLedger_OpenClose(t *testing.T) {
	f := newMutexFixture(t, 2, 2, false)
	require.NoError(t, f.acquire(0, 1))

	assert.ErrorIs(t, f.ledger.Close(1), task.ErrBusy)
	assert.ErrorIs(t, f.ledger.Open(1, 1), task.ErrBusy)
	assert.NoError(t, f.ledger.Close(0))
	assert.NoError(t, f.ledger.Open(0, 3), "closed column can be reopened")
	assert.ErrorIs(t, f.ledger.Open(5, 1), task.ErrInvalidHandle)
	assert.ErrorIs(t, f.ledger.Close(9), task.ErrInvalidHandle)

	require.NoError(t, f.ledger.AddThread(2))
	snapshot := f.ledger.Snapshot()
	assert.Equal(t, []int{3, 1}, snapshot.Total)
	assert.Equal(t, []int{3, 0}, snapshot.Available)
	assert.Equal(t, [][]int{{0, 1}, {0, 0}, {0, 0}}, snapshot.Allocation)

	assert.ErrorIs(t, f.ledger.ReleaseThread(0), task.ErrBusy)
	assert.NoError(t, f.ledger.ReleaseThread(1))
	require.NoError(t, f.release(0, 1))
	assert.NoError(t, f.ledger.ReleaseThread(0))
	assert.NoError(t, f.ledger.Close(1))
}

func TestSnapshot_Check(t *testing.T) {
	testCases := []struct {
		description string
		snapshot    Snapshot
		expectErr   bool
	}{
		{
			description: "consistent",
			snapshot:    Snapshot{Available: []int{0, 2}, Total: []int{1, 2}, Allocation: [][]int{{1, 0}}, Need: [][]int{{0, 1}}},
		},
		{
			description: "units lost",
			snapshot:    Snapshot{Available: []int{0}, Total: []int{1}, Allocation: [][]int{{0}}, Need: [][]int{{0}}},
			expectErr:   true,
		},
		{
			description: "ragged row",
			snapshot:    Snapshot{Available: []int{1, 1}, Total: []int{1, 1}, Allocation: [][]int{{0}}, Need: [][]int{{0, 0}}},
			expectErr:   true,
		},
		{
			description: "negative need",
			snapshot:    Snapshot{Available: []int{1}, Total: []int{1}, Allocation: [][]int{{0}}, Need: [][]int{{-1}}},
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := testCase.snapshot.Check()
			if testCase.expectErr {
				assert.ErrorIs(t, err, task.ErrCorrupted)
				return
			}
			assert.NoError(t, err)
		})
	}
}
