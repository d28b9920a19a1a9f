package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/common/validation"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/concurrent/threadutil"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/metrics"
)

// Handle identifies a scheduled task without exposing its memory. Handles
// are process-unique, monotonically increasing and never reused, so a
// stale handle held across a task's lifetime can never address an
// unrelated later task.
type Handle uint64

// InvalidHandle is returned by failed schedule operations.
const InvalidHandle Handle = 0

// Callback is invoked exactly once per firing, off the caller's
// goroutine. The callback owns arg for the duration of the call.
type Callback func(arg interface{})

// RunFunc is a back-off task's work function. Returning true stops the
// loop and triggers the success callback.
type RunFunc func(arg interface{}) bool

// SuccessFunc runs exactly once after a back-off task's RunFunc reports
// success, giving the caller a cleanup point for arg.
type SuccessFunc func(arg interface{})

// Config holds scheduler configuration. The zero value is usable.
type Config struct {
	// Name labels log entries and metrics. Defaults to "timer".
	Name string

	// Clock is the time source. Defaults to the system clock.
	Clock Clock

	// Location is used for time-of-day and cron evaluation.
	// Defaults to time.Local.
	Location *time.Location

	// Logger receives lifecycle events. Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// OnOrphaned receives the opaque argument of every task that was
	// still pending when Shutdown ran, so the owner can release it.
	// Optional.
	OnOrphaned func(arg interface{})
}

// Scheduler owns a registry of delayed and repeating tasks. Each task
// runs on its own worker goroutine; the registry maps handles to live
// task state so callers never hold a pointer a worker might free.
//
// All methods are safe for concurrent use.
type Scheduler struct {
	name     string
	clock    Clock
	location *time.Location
	logger   *zap.Logger
	metrics  *metrics.Registry
	parser   cron.Parser

	onOrphaned func(arg interface{})

	mu     threadutil.Mutex // guards tasks and closed, never held across a callback
	tasks  map[Handle]*task
	closed bool

	next uint64 // guarded by mu; 0 is never handed out

	wg sync.WaitGroup
}

// New creates a scheduler with default configuration.
func New() *Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) *Scheduler {
	name := cfg.Name
	if name == "" {
		name = "timer"
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		name:       name,
		clock:      clock,
		location:   location,
		logger:     logger,
		metrics:    cfg.Metrics,
		parser:     cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		onOrphaned: cfg.OnOrphaned,
		tasks:      make(map[Handle]*task),
	}
}

// ScheduleDelay schedules cb to fire once after delay. The returned
// handle is valid until the callback runs or the task is canceled.
func (s *Scheduler) ScheduleDelay(delay time.Duration, cb Callback, arg interface{}) (Handle, error) {
	if cb == nil {
		return InvalidHandle, validation.ValidateNotNil("timer", "callback", nil)
	}
	if delay < 0 {
		return InvalidHandle, zerrors.NewValidationError("timer", "delay", delay, "cannot be negative")
	}

	t := &task{
		kind:   kindOneShot,
		cb:     cb,
		arg:    arg,
		fireAt: s.clock.Now().Add(delay),
	}
	return s.register(t)
}

// ScheduleAtTimeOfDay schedules cb to fire once at the next occurrence of
// hour:minute. A target less than a minute away is pushed out a full day
// so clock skew around the boundary cannot fire the task immediately.
func (s *Scheduler) ScheduleAtTimeOfDay(hour, minute int, cb Callback, arg interface{}) (Handle, error) {
	if hour < 0 || hour > 23 {
		return InvalidHandle, zerrors.NewValidationError("timer", "hour", hour, "must be in [0,23]")
	}
	if minute < 0 || minute > 59 {
		return InvalidHandle, zerrors.NewValidationError("timer", "minute", minute, "must be in [0,59]")
	}

	now := s.clock.Now().In(s.location)
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.location)
	if target.Sub(now) <= time.Minute {
		target = target.AddDate(0, 0, 1)
	}
	return s.ScheduleDelay(target.Sub(now), cb, arg)
}

// Reschedule replaces the remaining delay of a pending one-shot task.
// The new delay is measured from now, not from the original schedule
// call. Returns false if the task is unknown, already running, canceled,
// or not a one-shot task.
func (s *Scheduler) Reschedule(h Handle, delay time.Duration) bool {
	if delay < 0 {
		return false
	}
	t := s.lookup(h)
	if t == nil || t.kind != kindOneShot {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cancelable() {
		return false
	}
	t.fireAt = s.clock.Now().Add(delay)
	t.wakeLocked()
	return true
}

// IsWaiting reports whether the task exists and has not started running.
func (s *Scheduler) IsWaiting(h Handle) bool {
	t := s.lookup(h)
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelable()
}

// Cancel cancels a pending task and hands the original opaque argument
// back to the caller, which decides how to release it. Cancellation only
// succeeds while the task is waiting; a task that already progressed to
// running completes normally and Cancel reports false.
func (s *Scheduler) Cancel(h Handle) (interface{}, bool) {
	t := s.lookup(h)
	if t == nil {
		return nil, false
	}

	t.mu.Lock()
	if !t.cancelable() {
		t.mu.Unlock()
		return nil, false
	}
	t.state = stateCanceled
	arg := t.arg
	t.arg = nil
	t.wakeLocked()
	t.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TimerTasksCanceled.WithLabelValues(s.name, t.kind.String()).Inc()
	}
	s.logger.Debug("task canceled", zap.Uint64("handle", uint64(h)))
	return arg, true
}

// ForceExecute makes a waiting task fire immediately instead of waiting
// out its delay. For repeating tasks this skips the current pause only;
// the loop then continues normally (see ShortCircuit). The callback still
// runs exactly once per firing, on the task's worker goroutine.
func (s *Scheduler) ForceExecute(h Handle) bool {
	t := s.lookup(h)
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cancelable() {
		return false
	}
	t.forced = true
	t.wakeLocked()
	return true
}

// NextFireTime returns when a pending task is due to fire. The second
// result is false if the task is unknown or already running/canceled.
func (s *Scheduler) NextFireTime(h Handle) (time.Time, bool) {
	t := s.lookup(h)
	if t == nil {
		return time.Time{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cancelable() {
		return time.Time{}, false
	}
	return t.fireAt, true
}

// Pending returns the number of registered tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown cancels every pending task, stops accepting new work and
// waits for all worker goroutines to exit. Arguments of tasks that never
// ran are handed to the OnOrphaned hook when one is configured. Tasks
// already running complete their current invocation first.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	s.closed = true
	pending := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		pending = append(pending, t)
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.mu.Lock()
		t.stopped = true
		if t.cancelable() {
			t.state = stateCanceled
		}
		t.wakeLocked()
		t.mu.Unlock()
	}

	s.wg.Wait()
	s.logger.Info("scheduler stopped", zap.String("name", s.name), zap.Int("orphaned", len(pending)))
}

// register assigns the next handle, inserts the task and starts its
// worker goroutine.
func (s *Scheduler) register(t *task) (Handle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return InvalidHandle, zerrors.ErrClosed
	}
	s.next++
	t.handle = Handle(s.next)
	t.state = stateIdle
	t.wake = make(chan struct{}, 1)
	s.tasks[t.handle] = t
	s.wg.Add(1)
	s.mu.Unlock()

	threadutil.Detach(fmt.Sprintf("%s-task-%d", s.name, t.handle), func() {
		defer s.wg.Done()
		defer s.finish(t)
		s.runTask(t)
	})

	if s.metrics != nil {
		s.metrics.TimerTasksScheduled.WithLabelValues(s.name, t.kind.String()).Inc()
		s.metrics.TimerTasksPending.WithLabelValues(s.name).Set(float64(s.Pending()))
	}
	s.logger.Debug("task scheduled",
		zap.Uint64("handle", uint64(t.handle)),
		zap.String("kind", t.kind.String()))
	return t.handle, nil
}

func (s *Scheduler) lookup(h Handle) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[h]
}

// finish removes a task from the registry after its worker exits. This
// runs even when a user callback panics, so the registry entry never
// outlives the goroutine.
func (s *Scheduler) finish(t *task) {
	t.mu.Lock()
	arg := t.arg
	t.arg = nil
	orphaned := t.stopped && arg != nil
	t.mu.Unlock()

	if orphaned && s.onOrphaned != nil {
		s.onOrphaned(arg)
	}

	s.mu.Lock()
	delete(s.tasks, t.handle)
	remaining := len(s.tasks)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TimerTasksPending.WithLabelValues(s.name).Set(float64(remaining))
	}
}
