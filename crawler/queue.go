package crawler

// queueSlack is the extra queue capacity beyond the iteration budget.
const queueSlack = 10

// workQueue is a bounded FIFO of absolute URLs awaiting a fetch.
// Pushing into a full queue drops the URL instead of blocking.
type workQueue struct {
	items    []string
	capacity int
}

func newWorkQueue(capacity int) *workQueue {
	return &workQueue{
		items:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// tryPush appends task unless the queue is at capacity.
// It reports whether the task was accepted.
func (q *workQueue) tryPush(task string) bool {
	if len(q.items) >= q.capacity {
		return false
	}

	q.items = append(q.items, task)

	return true
}

// pop removes and returns the oldest task.
func (q *workQueue) pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}

	task := q.items[0]
	q.items = q.items[1:]

	return task, true
}

func (q *workQueue) len() int {
	return len(q.items)
}
