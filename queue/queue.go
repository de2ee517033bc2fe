// Package queue implements a bounded, blocking handoff queue between the
// flow tracker that hands reassembled DNS-TCP chunks off and the worker
// pool that runs them through dnstcp.ProcessChunk.
//
// It is grounded on Suricata's "simple" thread-module queue handler
// (tmqh-simple.c): one mutex, one condition variable signaled on every
// enqueue, and a dequeue that waits once and accepts a spurious wakeup by
// returning the zero Item. The one addition this package makes beyond
// that source — a second condition variable for backpressure when the
// queue is full — exists because tmqh-simple.c's queue is effectively
// unbounded (limited only by memory), while this package's queue sits in
// front of a fixed worker pool and needs to push back instead of growing
// without limit.
package queue

import (
	"sync"
	"sync/atomic"
)

// Item is one unit of work handed through the queue: a chunk of bytes for
// a direction of a flow, identified by an opaque flow id assigned by the
// caller (typically the same id stored in dnstcp.FlowDNSState.ID).
type Item struct {
	Seq       uint64
	FlowID    uint64
	Direction uint8
	Data      []byte
}

// Queue is a fixed-capacity FIFO of Items, safe for concurrent producers
// and consumers.
type Queue struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond

	items []Item
	limit int

	seq atomic.Uint64

	closed bool
}

// New creates a Queue that holds at most limit items before In blocks.
func New(limit int) *Queue {
	q := &Queue{limit: limit}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q
}

// In enqueues an item, assigning it the next sequence number, and signals
// any consumer blocked in Out. It blocks while the queue is at capacity,
// mirroring TmqhOutputSimple's enqueue-then-signal pairing under the same
// lock.
func (q *Queue) In(flowID uint64, direction uint8, data []byte) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) >= q.limit && !q.closed {
		q.notFull.Wait()
	}

	seq := q.seq.Add(1)
	if q.closed {
		return seq
	}

	q.items = append(q.items, Item{Seq: seq, FlowID: flowID, Direction: direction, Data: data})
	q.notEmpty.Signal()

	return seq
}

// Out dequeues the oldest item. It blocks once if the queue is empty,
// mirroring TmqhInputSimple: a single SCondWait, then an unconditional
// length check. If a spurious wakeup leaves the queue still empty, Out
// returns ok == false rather than waiting again — callers run in a loop
// and simply call Out again, same as TmqhInputSimple's caller does.
func (q *Queue) Out() (item Item, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.items) == 0 {
		return Item{}, false
	}

	item, q.items = q.items[0], q.items[1:]
	q.notFull.Signal()

	return item, true
}

// Len reports the number of items currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close wakes every blocked In and Out call so their goroutines can
// notice shutdown and exit. After Close, In still assigns sequence
// numbers but never enqueues, and Out drains whatever remains before
// returning ok == false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
