package timer

import "github.com/viant/kcore/runtime/task"

type entry struct {
	deadline uint64
	seq      uint64
	thread   *task.Thread
}

// deadlines orders entries by deadline, then by insertion.
type deadlines []*entry

func (d deadlines) Len() int { return len(d) }

func (d deadlines) Less(i, j int) bool {
	if d[i].deadline != d[j].deadline {
		return d[i].deadline < d[j].deadline
	}
	return d[i].seq < d[j].seq
}

func (d deadlines) Swap(i, j int) { d[i], d[j] = d[j], d[i] }

func (d *deadlines) Push(x any) { *d = append(*d, x.(*entry)) }

func (d *deadlines) Pop() any {
	old := *d
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*d = old[:n-1]
	return item
}
