package threadutil

import (
	"context"
	"runtime/pprof"
	"sync"
)

// Thread is a joinable goroutine started by Spawn.
type Thread struct {
	name string
	done chan struct{}
}

// Spawn starts fn on a new goroutine carrying a best-effort name and
// returns a handle that can be joined. The name is attached as a pprof
// label ("thread") so it shows up in goroutine profiles and dumps.
func Spawn(name string, fn func()) *Thread {
	t := &Thread{
		name: name,
		done: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		pprof.Do(context.Background(), pprof.Labels("thread", name), func(context.Context) {
			fn()
		})
	}()
	return t
}

// Detach starts fn on a new named goroutine without a join handle.
func Detach(name string, fn func()) {
	go pprof.Do(context.Background(), pprof.Labels("thread", name), func(context.Context) {
		fn()
	})
}

// Name returns the name the thread was spawned with.
func (t *Thread) Name() string {
	return t.name
}

// Join blocks until the thread's function has returned. Join may be
// called from multiple goroutines and after completion.
func (t *Thread) Join() {
	<-t.done
}

// TryJoin reports whether the thread has finished without blocking.
func (t *Thread) TryJoin() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// JoinAll joins every thread in order.
func JoinAll(threads ...*Thread) {
	for _, t := range threads {
		if t != nil {
			t.Join()
		}
	}
}

// Group tracks a dynamic set of spawned threads, for components that
// create workers on demand and must join them all at shutdown.
type Group struct {
	wg sync.WaitGroup
}

// Spawn starts fn as a named member of the group.
func (g *Group) Spawn(name string, fn func()) {
	g.wg.Add(1)
	Detach(name, func() {
		defer g.wg.Done()
		fn()
	})
}

// Wait blocks until every spawned member has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
