package threadpool

import (
	"errors"
	"fmt"
	"runtime/debug"
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

// RunFunc executes a pool task with its opaque argument.
type RunFunc func(arg interface{})

// FreeFunc releases a task's argument. Invoked exactly once per
// submission: by the worker after the task ran, or synchronously by
// AddTask when the submission was rejected, or during Destroy for
// queued-but-never-started tasks.
type FreeFunc func(arg interface{})

type container struct {
	run  RunFunc
	free FreeFunc
	arg  interface{}
}

// Config holds pool configuration beyond the required bounds.
type Config struct {
	// QueueCapacity bounds the shared backlog. Defaults to 16 per max
	// thread.
	QueueCapacity int

	// PushTimeout bounds how long AddTask waits on a full backlog before
	// rejecting. Defaults to 5s.
	PushTimeout time.Duration

	// Logger receives lifecycle events. Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// Pool is an elastic worker pool: minThreads workers stay alive
// permanently, transient workers are created on demand up to maxThreads
// and retire after sitting idle past the idle timeout. All workers drain
// one shared bounded backlog, so tasks may complete out of submission
// order as soon as more than one worker is active.
type Pool struct {
	name        string
	min         int
	max         int
	idleTimeout time.Duration
	cfg         Config

	queue   *blockingqueue.Queue[container]
	logger  *zap.Logger
	metrics *metrics.Registry

	mu       threadutil.Mutex
	threads  int
	nextID   int
	gids     map[int64]struct{}
	stopping bool

	active  atomic.Int32
	workers threadutil.Group
	done    chan struct{}
}

// New creates a pool with the given bounds. min may be 0, in which case
// the first worker is created lazily by the first submitted task.
func New(name string, minThreads, maxThreads int, idleTimeout time.Duration) (*Pool, error) {
	return NewWithConfig(name, minThreads, maxThreads, idleTimeout, Config{})
}

// NewWithConfig creates a pool with custom queue and logging settings.
func NewWithConfig(name string, minThreads, maxThreads int, idleTimeout time.Duration, cfg Config) (*Pool, error) {
	if err := validation.ValidateNotEmpty("threadpool", "name", name); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("threadpool", "minThreads", minThreads); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("threadpool", "maxThreads", maxThreads); err != nil {
		return nil, err
	}
	if err := validation.ValidateRange("threadpool", "minThreads", "maxThreads", minThreads, maxThreads); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("threadpool", "idleTimeout", idleTimeout); err != nil {
		return nil, err
	}

	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = maxThreads * 16
	}
	if err := validation.ValidatePositive("threadpool", "QueueCapacity", cfg.QueueCapacity); err != nil {
		return nil, err
	}
	if cfg.PushTimeout == 0 {
		cfg.PushTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	queue, err := blockingqueue.New[container](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		name:        name,
		min:         minThreads,
		max:         maxThreads,
		idleTimeout: idleTimeout,
		cfg:         cfg,
		queue:       queue,
		logger:      cfg.Logger.With(zap.String("pool", name)),
		metrics:     cfg.Metrics,
		gids:        make(map[int64]struct{}),
		done:        make(chan struct{}),
	}

	p.mu.Lock()
	for i := 0; i < minThreads; i++ {
		p.spawnWorkerLocked(true)
	}
	p.mu.Unlock()

	return p, nil
}

// AddTask queues a task, creating a new worker when every current worker
// is busy and the pool is below its maximum. A rejected submission (pool
// destroyed, or backlog full past the push timeout) is reported as an
// error and free is invoked synchronously before AddTask returns.
func (p *Pool) AddTask(run RunFunc, arg interface{}, free FreeFunc) error {
	if run == nil {
		return validation.ValidateNotNil("threadpool", "run", nil)
	}

	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		p.reject(arg, free, "shutdown")
		return zerrors.ErrClosed
	}
	if p.threads < p.max && int(p.active.Load()) >= p.threads {
		p.spawnWorkerLocked(p.threads < p.min)
	}
	p.mu.Unlock()

	item := container{run: run, free: free, arg: arg}
	if err := p.queue.Push(item, p.cfg.PushTimeout); err != nil {
		reason := "shutdown"
		if errors.Is(err, zerrors.ErrTimeout) {
			reason = "backpressure"
		}
		p.reject(arg, free, reason)
		return err
	}

	if p.metrics != nil {
		p.metrics.PoolBacklog.WithLabelValues(p.name).Set(float64(p.queue.Len()))
	}
	return nil
}

// BacklogCount returns the approximate number of queued-but-not-started
// tasks.
func (p *Pool) BacklogCount() int {
	return p.queue.Len()
}

// ActiveCount returns the number of workers currently executing a task.
func (p *Pool) ActiveCount() int {
	return int(p.active.Load())
}

// ThreadCount returns the current number of worker goroutines.
func (p *Pool) ThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threads
}

// Destroy signals every worker to finish its current task and exit, then
// joins them all; no goroutine is ever leaked. Queued-but-not-started
// tasks are freed unrun. Destroy is idempotent and safe to call from
// within a task running on this pool: teardown then completes on a
// detached goroutine after the calling task returns.
func (p *Pool) Destroy() {
	p.mu.Lock()
	if p.stopping {
		fromWorker := p.isWorkerLocked()
		p.mu.Unlock()
		if !fromWorker {
			<-p.done
		}
		return
	}
	p.stopping = true
	fromWorker := p.isWorkerLocked()
	p.mu.Unlock()

	// Wake every worker, including those blocked on an empty pop.
	p.queue.Disable()

	finish := func() {
		p.workers.Wait()
		for _, item := range p.queue.Drain() {
			p.freeItem(item)
		}
		p.logger.Info("pool destroyed")
		close(p.done)
	}

	if fromWorker {
		threadutil.Detach(p.name+"-pool-teardown", finish)
		return
	}
	finish()
}

// isWorkerLocked reports whether the calling goroutine is one of the
// pool's workers. Callers must hold p.mu.
func (p *Pool) isWorkerLocked() bool {
	_, ok := p.gids[goid.Get()]
	return ok
}

// spawnWorkerLocked starts one worker goroutine. Workers created while
// the pool is below minThreads are permanent; the rest are transient and
// retire after the idle timeout. Callers must hold p.mu.
func (p *Pool) spawnWorkerLocked(permanent bool) {
	p.threads++
	p.nextID++
	id := p.nextID
	p.workers.Spawn(fmt.Sprintf("%s-worker-%d", p.name, id), func() {
		p.workLoop(id, permanent)
	})
	if p.metrics != nil {
		p.metrics.PoolThreads.WithLabelValues(p.name).Set(float64(p.threads))
	}
}

func (p *Pool) workLoop(id int, permanent bool) {
	gid := goid.Get()
	p.mu.Lock()
	p.gids[gid] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.gids, gid)
		p.threads--
		remaining := p.threads
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.PoolThreads.WithLabelValues(p.name).Set(float64(remaining))
		}
		p.logger.Debug("worker exited", zap.Int("worker", id), zap.Bool("permanent", permanent))
	}()

	// Permanent workers block until woken by work or Disable; transient
	// workers use the idle timeout as their retirement clock.
	timeout := time.Duration(-1)
	if !permanent {
		timeout = p.idleTimeout
	}

	for {
		item, err := p.queue.Pop(timeout)
		if err != nil {
			if errors.Is(err, zerrors.ErrClosed) {
				return
			}
			if !permanent {
				return // idle past the timeout
			}
			continue
		}

		p.mu.Lock()
		stopping := p.stopping
		p.mu.Unlock()
		if stopping {
			// Popped concurrently with Destroy; do not start new work.
			p.freeItem(item)
			return
		}

		p.runItem(id, item)
	}
}

func (p *Pool) runItem(id int, item container) {
	p.active.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			// A panicking task must not take the worker down with it.
			p.logger.Error("task panicked",
				zap.Int("worker", id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			if p.metrics != nil {
				p.metrics.PoolTaskPanics.WithLabelValues(p.name).Inc()
			}
		}
		p.freeItem(item)
		p.active.Add(-1)
		if p.metrics != nil {
			p.metrics.PoolTasksRun.WithLabelValues(p.name).Inc()
			p.metrics.PoolTaskDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
			p.metrics.PoolActive.WithLabelValues(p.name).Set(float64(p.active.Load()))
			p.metrics.PoolBacklog.WithLabelValues(p.name).Set(float64(p.queue.Len()))
		}
	}()

	item.run(item.arg)
}

func (p *Pool) freeItem(item container) {
	if item.free != nil {
		item.free(item.arg)
	}
}

func (p *Pool) reject(arg interface{}, free FreeFunc, reason string) {
	if free != nil {
		free(arg)
	}
	if p.metrics != nil {
		p.metrics.PoolTasksDropped.WithLabelValues(p.name, reason).Inc()
	}
	p.logger.Debug("submission rejected", zap.String("reason", reason))
}
