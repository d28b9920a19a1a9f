/*
Package blockingqueue provides a fixed-capacity FIFO queue with blocking,
timeout-bounded push and pop operations.

The queue is the glue between work producers and worker goroutines in the
executor and thread pool packages: producers push with a bounded wait so a
full backlog surfaces as backpressure instead of unbounded growth, and
workers pop with a short timeout so lifecycle changes are noticed promptly
even while idle.

Basic usage:

	q, err := blockingqueue.New[string](64)
	if err != nil {
		log.Fatal(err)
	}

	if err := q.Push("work", time.Second); err != nil {
		// queue full past the timeout, or disabled
	}

	item, err := q.Pop(500 * time.Millisecond)

Shutdown uses the one-way disable switch:

	q.Disable()              // wakes every blocked pusher and popper
	for _, item := range q.Drain() {
		release(item)        // reclaim queued-but-not-started work
	}

All operations on a disabled queue fail fast with errors.ErrClosed.
*/
package blockingqueue
