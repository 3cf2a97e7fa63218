// Package dispatcher provides the hand-off through which worker goroutines
// schedule work onto the render goroutine.
package dispatcher

import (
	"fmt"
	"sync/atomic"

	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
)

// Action is a unit of work executed on the render goroutine.
type Action func()

type entry struct {
	action Action
	next   *entry
}

// Queue is a multi-producer, single-consumer action queue. Producers push onto
// a lock-free stack; the consumer swaps the whole stack out in one atomic step
// and runs it in enqueue order.
type Queue struct {
	head  atomic.Pointer[entry]
	depth atomic.Int64
}

func New() *Queue {
	return &Queue{}
}

// Enqueue schedules action for the next drain. It never blocks and may be
// called from any goroutine.
func (q *Queue) Enqueue(action Action) {
	if action == nil {
		return
	}
	e := &entry{action: action}
	for {
		head := q.head.Load()
		e.next = head
		if q.head.CompareAndSwap(head, e) {
			q.depth.Add(1)
			return
		}
	}
}

// DrainAndRun runs every action queued before the call, oldest first, and
// returns how many ran. Actions enqueued while draining wait for the next
// call. Must only be called from the render goroutine.
func (q *Queue) DrainAndRun() int {
	head := q.head.Swap(nil)
	if head == nil {
		return 0
	}
	var batch []Action
	for e := head; e != nil; e = e.next {
		batch = append(batch, e.action)
	}
	q.depth.Add(-int64(len(batch)))
	for i := len(batch) - 1; i >= 0; i-- {
		run(batch[i])
	}
	events.Queue.Drain(len(batch))
	return len(batch)
}

// Len returns the approximate number of queued actions.
func (q *Queue) Len() int {
	n := q.depth.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

func run(action Action) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("delivery action panicked: %v", r)
			events.Queue.ActionPanic(err)
			logging.Error(err)
		}
	}()
	action()
}
