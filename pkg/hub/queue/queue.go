// Package queue provides the bounded record queues fed by the poller.
package queue

import (
	"errors"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// ErrCapacity indicates a non-positive capacity.
var ErrCapacity = errors.New("capacity must be positive")

// Codec converts a record to and from its fixed-size slot.
type Codec[T any] interface {
	Size() int
	Encode(b []byte, v T)
	Decode(b []byte) (T, error)
}

// Queue is a fixed-capacity FIFO of fixed-size records.
// Neither Put nor Get ever blocks. When Put finds the queue full, every
// queued record is dropped before the new one is stored.
type Queue[T any] struct {
	codec    Codec[T]
	capacity int
	ring     *ringbuffer.RingBuffer
	wslot    []byte
	rslot    []byte
	dropped  uint64
	lock     sync.Mutex
}

// New creates a queue holding up to capacity records.
func New[T any](capacity int, codec Codec[T]) (*Queue[T], error) {
	if capacity < 1 {
		return nil, ErrCapacity
	}
	size := codec.Size()
	return &Queue[T]{
		codec:    codec,
		capacity: capacity,
		ring:     ringbuffer.New(capacity * size),
		wslot:    make([]byte, size),
		rslot:    make([]byte, size),
	}, nil
}

// Put stores v and returns the number of records purged to make room.
func (q *Queue[T]) Put(v T) (purged int) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.codec.Encode(q.wslot, v)
	if q.ring.Free() < len(q.wslot) {
		purged = q.ring.Length() / len(q.wslot)
		q.ring.Reset()
		q.dropped += uint64(purged)
	}
	// a slot always fits after the purge.
	q.ring.Write(q.wslot)
	return
}

// Get removes and returns the oldest record.
func (q *Queue[T]) Get() (v T, ok bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.ring.Length() < len(q.rslot) {
		return
	}
	if _, err := q.ring.Read(q.rslot); err != nil {
		return
	}
	v, err := q.codec.Decode(q.rslot)
	return v, err == nil
}

// Purge drops every queued record and returns how many were dropped.
func (q *Queue[T]) Purge() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	n := q.ring.Length() / len(q.wslot)
	q.ring.Reset()
	return n
}

// Len returns the number of queued records.
func (q *Queue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.ring.Length() / len(q.wslot)
}

// Cap returns the capacity in records.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Dropped returns the number of records lost to overflow purges.
func (q *Queue[T]) Dropped() uint64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.dropped
}
