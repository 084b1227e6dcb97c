package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrideLess(t *testing.T) {
	const max = ^uint64(0)
	testCases := []struct {
		description string
		a, b        uint64
		expect      bool
	}{
		{description: "smaller first", a: 10, b: 20, expect: true},
		{description: "larger first", a: 20, b: 10, expect: false},
		{description: "equal", a: 7, b: 7, expect: false},
		{description: "wrapped counter is later", a: max - 5, b: 3, expect: true},
		{description: "wrapped counter compared back", a: 3, b: max - 5, expect: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, StrideLess(testCase.a, testCase.b))
		})
	}
}

func TestThread_SetPriority(t *testing.T) {
	testCases := []struct {
		description string
		priority    int64
		expectErr   bool
		expect      uint64
	}{
		{description: "minimum", priority: 2, expect: 2},
		{description: "regular", priority: 8, expect: 8},
		{description: "one rejected", priority: 1, expectErr: true, expect: DefaultPriority},
		{description: "negative rejected", priority: -4, expectErr: true, expect: DefaultPriority},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			thread := NewThread(1, 0)
			err := thread.SetPriority(testCase.priority)
			if testCase.expectErr {
				assert.True(t, errors.Is(err, ErrInvalidArgument))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.expect, thread.Priority())
		})
	}
}

func TestThread_Accounting(t *testing.T) {
	thread := NewThread(3, 1)
	assert.Equal(t, StatusReady, thread.Status())

	assert.EqualValues(t, BigStride/DefaultPriority, thread.Advance(BigStride))
	assert.NoError(t, thread.SetPriority(4))
	assert.EqualValues(t, BigStride/DefaultPriority+BigStride/4, thread.Advance(BigStride))

	thread.MarkDispatched(100)
	thread.MarkDispatched(200)
	assert.EqualValues(t, 100, thread.BeginTime())

	thread.CountSyscall(124)
	thread.CountSyscall(124)
	thread.CountSyscall(93)
	assert.Equal(t, map[int]uint32{124: 2, 93: 1}, thread.SyscallTimes())

	_, exited := thread.ExitCode()
	assert.False(t, exited)
	thread.SetExit(7)
	code, exited := thread.ExitCode()
	assert.True(t, exited)
	assert.Equal(t, 7, code)
	assert.Equal(t, StatusZombie, thread.Status())
}

func TestContext_SwitchTo(t *testing.T) {
	main := NewContext()
	worker := NewContext()
	var trace []string
	worker.Go(func() {
		trace = append(trace, "worker:1")
		worker.SwitchTo(main)
		trace = append(trace, "worker:2")
		worker.Leave(main)
	})

	trace = append(trace, "main:1")
	assert.True(t, main.SwitchTo(worker))
	trace = append(trace, "main:2")
	assert.True(t, main.SwitchTo(worker))
	trace = append(trace, "main:3")
	assert.Equal(t, []string{"main:1", "worker:1", "main:2", "worker:2", "main:3"}, trace)
}

func TestContext_Kill(t *testing.T) {
	main := NewContext()
	worker := NewContext()
	finished := make(chan bool, 1)
	worker.Go(func() {
		finished <- worker.SwitchTo(main)
	})
	assert.True(t, main.SwitchTo(worker))
	worker.Kill()
	assert.True(t, worker.Killed())
	assert.False(t, <-finished)
}
