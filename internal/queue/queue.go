// Package queue provides a fixed-capacity FIFO with blocking producer and
// consumer semantics. Put blocks while the queue is full, Get blocks while it
// is empty, and items come out in the order they went in.
package queue

import (
	"errors"
	"sync"
)

var ErrInvalidCapacity = errors.New("queue capacity must be greater than zero")

// Queue is a bounded FIFO safe for any number of concurrent producers and
// consumers. Capacity is bounded by two counting signals: free tokens gate
// producers and fill tokens gate consumers. The mutex only covers the slot
// array mutation, never a blocking wait, so goroutines park on the token
// channels while at most one mutates the ring at a time.
type Queue[T any] struct {
	mu    sync.Mutex
	slots []T
	head  int
	tail  int
	count int
	free  chan struct{}
	fill  chan struct{}
}

func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	q := &Queue[T]{
		slots: make([]T, capacity),
		free:  make(chan struct{}, capacity),
		fill:  make(chan struct{}, capacity),
	}
	for range capacity {
		q.free <- struct{}{}
	}
	return q, nil
}

// Put appends item as the new tail, blocking until a slot is free. Items are
// never dropped.
func (q *Queue[T]) Put(item T) {
	<-q.free
	q.mu.Lock()
	q.slots[q.tail] = item
	q.tail = (q.tail + 1) % len(q.slots)
	q.count++
	q.mu.Unlock()
	q.fill <- struct{}{}
}

// Get removes and returns the head item, blocking until one is available.
func (q *Queue[T]) Get() T {
	<-q.fill
	q.mu.Lock()
	item := q.slots[q.head]
	var zero T
	q.slots[q.head] = zero
	q.head = (q.head + 1) % len(q.slots)
	q.count--
	q.mu.Unlock()
	q.free <- struct{}{}
	return item
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

func (q *Queue[T]) Cap() int {
	return len(q.slots)
}
