package primitive

import "github.com/viant/kcore/runtime/task"

// Host suspends and resumes threads on behalf of primitives.
type Host interface {
	// Yield re-queues the running thread t and switches away.
	Yield(t *task.Thread)
	// Block switches away from t, which is already marked Blocked and
	// registered on a wait queue.
	Block(t *task.Thread)
	// Wake marks t Ready and re-queues it.
	Wake(t *task.Thread)
}
