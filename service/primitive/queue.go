package primitive

import (
	"github.com/gammazero/deque"
	"github.com/viant/kcore/runtime/task"
)

// WaitQueue is a FIFO of suspended threads. It is not synchronized; the
// owning primitive guards it.
type WaitQueue struct {
	threads deque.Deque[*task.Thread]
}

// Push appends t to the tail.
func (q *WaitQueue) Push(t *task.Thread) {
	q.threads.PushBack(t)
}

// Pop removes the head, nil when empty.
func (q *WaitQueue) Pop() *task.Thread {
	if q.threads.Len() == 0 {
		return nil
	}
	return q.threads.PopFront()
}

// Remove drops t wherever it is queued.
func (q *WaitQueue) Remove(t *task.Thread) bool {
	index := q.threads.Index(func(candidate *task.Thread) bool { return candidate == t })
	if index < 0 {
		return false
	}
	q.threads.Remove(index)
	return true
}

func (q *WaitQueue) Len() int {
	return q.threads.Len()
}
