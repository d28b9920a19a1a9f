package executor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/common/validation"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/concurrent/blockingqueue"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/concurrent/threadutil"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/metrics"
)

// RunFunc executes a queued task. obj and arg are the opaque values the
// submitter provided.
type RunFunc func(obj, arg interface{})

// FreeFunc releases a task's resources. It is invoked exactly once per
// submission: by the worker after the task ran, or synchronously on the
// submitter's goroutine when the submission was rejected.
type FreeFunc func(obj, arg interface{})

// container is the unit of ownership: whichever goroutine pops it must
// invoke run-then-free, or free alone for rejected/dropped items.
type container struct {
	obj  interface{}
	arg  interface{}
	run  RunFunc
	free FreeFunc
}

const (
	stateRun int32 = iota
	// stateFinish stops intake but lets the worker drain the backlog.
	stateFinish
	stateCancel
)

// Config holds executor configuration.
type Config struct {
	// QueueCapacity bounds the backlog. Defaults to 128.
	QueueCapacity int

	// PushTimeout bounds how long Submit waits on a full backlog before
	// rejecting. Defaults to 5s.
	PushTimeout time.Duration

	// PollInterval bounds the worker's idle pop so state changes are
	// noticed promptly. Defaults to 500ms.
	PollInterval time.Duration

	// Logger receives lifecycle events. Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 128,
		PushTimeout:   5 * time.Second,
		PollInterval:  500 * time.Millisecond,
	}
}

// Executor is a "thread pool of one": a single always-on worker
// goroutine draining a bounded queue strictly in submission order. It
// serializes operations that must not interleave without the callers
// needing a shared lock.
type Executor struct {
	name    string
	cfg     Config
	queue   *blockingqueue.Queue[container]
	logger  *zap.Logger
	metrics *metrics.Registry

	state     atomic.Int32
	workerGID atomic.Int64
	worker    *threadutil.Thread

	teardown sync.Once
	done     chan struct{} // closed when teardown (including drain) completed
}

// New creates an executor with default configuration and starts its
// worker.
func New(name string) (*Executor, error) {
	return NewWithConfig(name, DefaultConfig())
}

// NewWithConfig creates an executor with custom configuration and starts
// its worker.
func NewWithConfig(name string, cfg Config) (*Executor, error) {
	if err := validation.ValidateNotEmpty("executor", "name", name); err != nil {
		return nil, err
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 128
	}
	if err := validation.ValidatePositive("executor", "QueueCapacity", cfg.QueueCapacity); err != nil {
		return nil, err
	}
	if cfg.PushTimeout == 0 {
		cfg.PushTimeout = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	queue, err := blockingqueue.New[container](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		name:    name,
		cfg:     cfg,
		queue:   queue,
		logger:  cfg.Logger.With(zap.String("executor", name)),
		metrics: cfg.Metrics,
		done:    make(chan struct{}),
	}
	e.worker = threadutil.Spawn(name+"-executor", e.workLoop)
	return e, nil
}

// Submit queues a task for execution. run then free execute on the
// worker goroutine in strict submission order. A rejected submission
// (executor shutting down, or backlog full past the push timeout) is
// reported as an error and free is invoked synchronously before Submit
// returns, so resources are never silently leaked.
func (e *Executor) Submit(obj, arg interface{}, run RunFunc, free FreeFunc) error {
	if run == nil {
		return validation.ValidateNotNil("executor", "run", nil)
	}

	if e.state.Load() != stateRun {
		e.reject(obj, arg, free, "shutdown")
		return zerrors.ErrClosed
	}

	item := container{obj: obj, arg: arg, run: run, free: free}
	if err := e.queue.Push(item, e.cfg.PushTimeout); err != nil {
		reason := "shutdown"
		if errors.Is(err, zerrors.ErrTimeout) {
			reason = "backpressure"
		}
		e.reject(obj, arg, free, reason)
		return err
	}

	if e.metrics != nil {
		e.metrics.ExecutorSubmitted.WithLabelValues(e.name).Inc()
		e.metrics.ExecutorBacklog.WithLabelValues(e.name).Set(float64(e.queue.Len()))
	}
	return nil
}

// BacklogCount returns the approximate number of queued-but-not-started
// tasks. It reports 0 once the executor has been canceled.
func (e *Executor) BacklogCount() int {
	if e.state.Load() == stateCancel {
		return 0
	}
	return e.queue.Len()
}

// Clear drops every queued-but-not-started task, invoking each task's
// free function. Tasks already started are unaffected. Clear does
// nothing once shutdown has begun.
func (e *Executor) Clear() {
	if e.state.Load() != stateRun {
		return
	}
	dropped := e.queue.Drain()
	for _, item := range dropped {
		e.freeItem(item)
	}
	if len(dropped) > 0 {
		e.logger.Debug("backlog cleared", zap.Int("dropped", len(dropped)))
	}
	if e.metrics != nil {
		e.metrics.ExecutorBacklog.WithLabelValues(e.name).Set(float64(e.queue.Len()))
	}
}

// Destroy stops the executor without draining: the current task (if any)
// completes, queued-but-not-started tasks are freed unrun, and the
// worker goroutine is joined. Destroy is idempotent and safe to call
// from within a task running on this executor.
func (e *Executor) Destroy() {
	e.state.Store(stateCancel)
	// Wake the worker even if it is blocked on an empty pop.
	e.queue.Disable()
	e.shutdown()
}

// DrainAndDestroy stops intake and runs every already-accepted task
// before shutting down, which plain Destroy does not guarantee. If the
// backlog is already empty this is equivalent to Destroy.
func (e *Executor) DrainAndDestroy() {
	e.state.CompareAndSwap(stateRun, stateFinish)
	e.shutdown()
}

// shutdown joins the worker and reclaims whatever is left in the queue.
// When called from the worker goroutine itself (a task destroying its
// own executor) the join happens on a detached goroutine so the caller
// never deadlocks waiting on itself.
func (e *Executor) shutdown() {
	finish := func() {
		e.worker.Join()
		e.teardown.Do(func() {
			e.queue.Disable()
			for _, item := range e.queue.Drain() {
				e.freeItem(item)
			}
			e.logger.Info("executor stopped")
			close(e.done)
		})
	}

	if goid.Get() == e.workerGID.Load() {
		threadutil.Detach(e.name+"-executor-teardown", finish)
		return
	}
	finish()
	<-e.done
}

// workLoop is the single consumer; FIFO order of the queue is therefore
// the execution order.
func (e *Executor) workLoop() {
	e.workerGID.Store(goid.Get())

	for {
		switch e.state.Load() {
		case stateCancel:
			return
		case stateFinish:
			if e.queue.Len() == 0 {
				return
			}
		}

		item, err := e.queue.Pop(e.cfg.PollInterval)
		if err != nil {
			if errors.Is(err, zerrors.ErrClosed) {
				return
			}
			continue // timeout; recheck state
		}
		e.runItem(item)
	}
}

func (e *Executor) runItem(item container) {
	item.run(item.obj, item.arg)
	e.freeItem(item)
	if e.metrics != nil {
		e.metrics.ExecutorExecuted.WithLabelValues(e.name).Inc()
		e.metrics.ExecutorBacklog.WithLabelValues(e.name).Set(float64(e.queue.Len()))
	}
}

func (e *Executor) freeItem(item container) {
	if item.free != nil {
		item.free(item.obj, item.arg)
	}
}

func (e *Executor) reject(obj, arg interface{}, free FreeFunc, reason string) {
	if free != nil {
		free(obj, arg)
	}
	if e.metrics != nil {
		e.metrics.ExecutorRejected.WithLabelValues(e.name, reason).Inc()
	}
	e.logger.Debug("submission rejected", zap.String("reason", reason))
}
