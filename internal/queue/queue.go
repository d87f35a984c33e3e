// Package queue is a priority work queue and worker pool: a single deque
// holding Normal-priority tasks strictly before Background-priority ones,
// drained by a fixed pool of workers.
package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/bgindexd/internal/debug"
)

// Priority is a task's dispatch tier. Normal tasks are always dispatched
// before Background tasks, regardless of enqueue order between tiers.
type Priority int

const (
	Background Priority = iota
	Normal
)

type item struct {
	fn       func()
	priority Priority
}

// Queue is a two-tier priority deque plus a fixed worker pool. The zero
// value is not usable; construct with New.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []item
	stopping bool
	active   int

	wg      sync.WaitGroup
	workers int

	preventStarvation atomic.Bool
}

// New creates a queue with workers goroutines, each running the dispatch
// loop immediately.
func New(workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{workers: workers}
	q.cond = sync.NewCond(&q.mu)

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.runWorker(i)
	}
	return q
}

// Enqueue adds fn to the queue at the given priority. Normal tasks are
// spliced in immediately before the first Background task (or appended, if
// none is queued); Background tasks are always appended. Insertion is
// linear-scan, acceptable because live Normal tasks are expected to number
// in the single digits.
func (q *Queue) Enqueue(priority Priority, fn func()) {
	q.mu.Lock()
	if priority == Normal {
		idx := len(q.tasks)
		for i, t := range q.tasks {
			if t.priority == Background {
				idx = i
				break
			}
		}
		q.tasks = append(q.tasks, item{})
		copy(q.tasks[idx+1:], q.tasks[idx:])
		q.tasks[idx] = item{fn: fn, priority: priority}
	} else {
		q.tasks = append(q.tasks, item{fn: fn, priority: priority})
	}
	q.mu.Unlock()

	q.cond.Signal()
}

func (q *Queue) runWorker(id int) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.stopping {
			q.cond.Wait()
		}
		if q.stopping {
			q.tasks = nil
			q.mu.Unlock()
			debug.LogQueue("worker %d exiting on stop\n", id)
			return
		}

		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.active++
		q.mu.Unlock()

		// Background tasks yield around their execution when starvation
		// prevention is off: there is no portable per-goroutine priority
		// knob, so instead a Background task gives the scheduler a chance
		// to run any Normal task that arrived concurrently.
		yield := task.priority == Background && !q.preventStarvation.Load()
		if yield {
			runtime.Gosched()
		}

		task.fn()

		if yield {
			runtime.Gosched()
		}

		q.mu.Lock()
		q.active--
		q.mu.Unlock()
		q.cond.Broadcast()
	}
}

// Stop clears the queue and joins all workers. In-flight tasks are not
// interrupted; Stop blocks until they return.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopping = true
	q.mu.Unlock()
	q.cond.Broadcast()
	q.wg.Wait()
}

// idle reports whether the queue has no queued tasks and no worker
// mid-execution.
func (q *Queue) idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks) == 0 && q.active == 0
}

// BlockUntilIdle waits for the idle predicate to hold, polling with a
// capped backoff. timeout <= 0 means wait indefinitely. Returns true if the
// predicate became true before the deadline.
func (q *Queue) BlockUntilIdle(timeout time.Duration) bool {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	backoff := time.Millisecond
	const maxBackoff = 50 * time.Millisecond

	for {
		if q.idle() {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return false
		}
		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// PreventThreadStarvationInTests disables the Background-task yield, a test
// hook for asserting throughput without interleaving delays. Defaults to
// off; intended to be called once before enqueuing work, not toggled
// mid-run.
func (q *Queue) PreventThreadStarvationInTests() {
	q.preventStarvation.Store(true)
}

// Len reports the number of queued (not yet dispatched) tasks, for tests
// and diagnostics.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
