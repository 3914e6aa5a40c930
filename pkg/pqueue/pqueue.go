// Package pqueue provides a small ordered priority queue.
//
// Entries are kept sorted by priority, lowest value first. Entries that share
// a priority come out in the order they went in. Insertion is a linear scan,
// which is fine for the short interactive job lists this package targets.
package pqueue

import (
	"cmp"
	"slices"
)

// Entry is a payload paired with the priority it was enqueued under.
type Entry[T any, P cmp.Ordered] struct {
	Payload  T
	Priority P
}

// PriorityQueue holds entries in non-decreasing priority order.
// It is not safe for concurrent use.
type PriorityQueue[T any, P cmp.Ordered] struct {
	items []Entry[T, P]
}

// New returns an empty queue.
func New[T any, P cmp.Ordered]() *PriorityQueue[T, P] {
	return &PriorityQueue[T, P]{}
}

// Enqueue inserts payload immediately before the first entry whose priority is
// strictly greater than priority, or at the end if there is none.
func (q *PriorityQueue[T, P]) Enqueue(payload T, priority P) {
	e := Entry[T, P]{Payload: payload, Priority: priority}
	for i := range q.items {
		if q.items[i].Priority > priority {
			q.items = slices.Insert(q.items, i, e)
			return
		}
	}
	q.items = append(q.items, e)
}

// Dequeue removes and returns the front entry.
// The boolean is false when the queue is empty.
func (q *PriorityQueue[T, P]) Dequeue() (Entry[T, P], bool) {
	if len(q.items) == 0 {
		return Entry[T, P]{}, false
	}
	e := q.items[0]
	q.items[0] = Entry[T, P]{} // release payload for GC
	q.items = q.items[1:]
	return e, true
}

// PeekFront returns the front entry without removing it.
func (q *PriorityQueue[T, P]) PeekFront() (Entry[T, P], bool) {
	if len(q.items) == 0 {
		return Entry[T, P]{}, false
	}
	return q.items[0], true
}

// IsEmpty reports whether the queue holds no entries.
func (q *PriorityQueue[T, P]) IsEmpty() bool { return len(q.items) == 0 }

// Size returns the number of entries.
func (q *PriorityQueue[T, P]) Size() int { return len(q.items) }

// DrainView returns a copy of all entries in dequeue order.
// The queue is left unchanged.
func (q *PriorityQueue[T, P]) DrainView() []Entry[T, P] {
	out := make([]Entry[T, P], len(q.items))
	copy(out, q.items)
	return out
}

// Clear removes all entries.
func (q *PriorityQueue[T, P]) Clear() {
	clear(q.items)
	q.items = nil
}
