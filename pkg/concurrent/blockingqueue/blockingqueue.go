package blockingqueue

import (
	"sync"
	"time"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/common/validation"
)

// Queue is a fixed-capacity FIFO with blocking push and pop.
//
// Capacity is set at creation and never grows. Disable flips a one-way
// switch that releases every blocked pusher and popper; all operations on
// a disabled queue fail fast with ErrClosed.
//
// All methods are safe for concurrent use.
type Queue[T any] struct {
	items     chan T
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a queue with the given capacity. Capacity must be positive.
func New[T any](capacity int) (*Queue[T], error) {
	if err := validation.ValidatePositive("blockingqueue", "capacity", capacity); err != nil {
		return nil, err
	}
	return &Queue[T]{
		items: make(chan T, capacity),
		done:  make(chan struct{}),
	}, nil
}

// Push appends item to the queue, blocking up to timeout for space.
// A negative timeout blocks until space is available or the queue is
// disabled. Returns ErrTimeout when the wait expires and ErrClosed once
// the queue is disabled.
func (q *Queue[T]) Push(item T, timeout time.Duration) error {
	select {
	case <-q.done:
		return zerrors.ErrClosed
	default:
	}

	if timeout < 0 {
		select {
		case q.items <- item:
			return nil
		case <-q.done:
			return zerrors.ErrClosed
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case q.items <- item:
		return nil
	case <-q.done:
		return zerrors.ErrClosed
	case <-timer.C:
		return zerrors.ErrTimeout
	}
}

// TryPush appends item without blocking. Returns ErrCapacityExceeded when
// the queue is full.
func (q *Queue[T]) TryPush(item T) error {
	select {
	case <-q.done:
		return zerrors.ErrClosed
	default:
	}

	select {
	case q.items <- item:
		return nil
	case <-q.done:
		return zerrors.ErrClosed
	default:
		return zerrors.ErrCapacityExceeded
	}
}

// Pop removes the oldest item, blocking up to timeout for one to arrive.
// A negative timeout blocks until an item arrives or the queue is
// disabled. Returns ErrTimeout when the wait expires and ErrClosed once
// the queue is disabled.
func (q *Queue[T]) Pop(timeout time.Duration) (T, error) {
	var zero T

	select {
	case <-q.done:
		return zero, zerrors.ErrClosed
	default:
	}

	if timeout < 0 {
		select {
		case item := <-q.items:
			return item, nil
		case <-q.done:
			return zero, zerrors.ErrClosed
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-q.items:
		return item, nil
	case <-q.done:
		return zero, zerrors.ErrClosed
	case <-timer.C:
		return zero, zerrors.ErrTimeout
	}
}

// TryPop removes the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	select {
	case item := <-q.items:
		return item, true
	default:
		return zero, false
	}
}

// Drain removes and returns every currently queued item. Items pushed
// concurrently with Drain may or may not be included. Drain works on a
// disabled queue so shutdown paths can reclaim queued work.
func (q *Queue[T]) Drain() []T {
	var drained []T
	for {
		select {
		case item := <-q.items:
			drained = append(drained, item)
		default:
			return drained
		}
	}
}

// Len returns the current number of queued items. The value is
// approximate under concurrent pushes and pops.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.items)
}

// Disable permanently disables the queue, waking every blocked pusher and
// popper. Disable is idempotent. Queued items remain reachable via Drain
// and TryPop.
func (q *Queue[T]) Disable() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Disabled reports whether Disable has been called.
func (q *Queue[T]) Disabled() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
