package timer

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rdkcentral/zilker-sdk-sub009/pkg/concurrent/threadutil"
)

type taskState int

const (
	// stateIdle is the short transient state between registration and the
	// worker's first wait.
	stateIdle taskState = iota
	stateWaiting
	stateRunning
	stateCanceled
)

type taskKind int

const (
	kindOneShot taskKind = iota
	kindFixedDelay
	kindFixedRate
	kindBackoff
	kindCron
)

func (k taskKind) String() string {
	switch k {
	case kindOneShot:
		return "one-shot"
	case kindFixedDelay:
		return "fixed-delay"
	case kindFixedRate:
		return "fixed-rate"
	case kindBackoff:
		return "back-off"
	case kindCron:
		return "cron"
	default:
		return "unknown"
	}
}

// task is the per-handle control block. Each task has its own lock and
// wake channel so unrelated tasks never serialize on each other; the
// scheduler's registry lock is only taken for insert/lookup/remove.
type task struct {
	handle Handle
	kind   taskKind

	mu     threadutil.Mutex
	state  taskState
	fireAt time.Time

	// forced fires the task immediately on the next wake; stopped is set
	// by Shutdown and terminates repeating loops after the current run.
	forced  bool
	stopped bool

	interval time.Duration // fixed-delay / fixed-rate

	// back-off
	curDelay  time.Duration
	maxDelay  time.Duration
	increment time.Duration

	cronSched cron.Schedule

	cb      Callback
	run     RunFunc
	success SuccessFunc
	arg     interface{}

	wake chan struct{} // cap 1
}

// cancelable reports whether the task can still be canceled, rescheduled
// or force-executed. Callers must hold t.mu.
func (t *task) cancelable() bool {
	return t.state == stateIdle || t.state == stateWaiting
}

// wakeLocked nudges the worker so it recomputes its remaining wait.
// Callers must hold t.mu; the send never blocks.
func (t *task) wakeLocked() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// runTask drives the task to completion on its worker goroutine.
func (s *Scheduler) runTask(t *task) {
	switch t.kind {
	case kindOneShot:
		s.runOneShot(t)
	case kindFixedDelay, kindFixedRate, kindCron:
		s.runRepeating(t)
	case kindBackoff:
		s.runBackoff(t)
	}
}

// waitUntilDue blocks until the task is due, force-executed or canceled.
// The remaining time is recomputed after every wake, which tolerates
// spurious wakes and makes Reschedule and ChangeInterval take effect
// immediately. On a true return the task has transitioned to running.
func (s *Scheduler) waitUntilDue(t *task) bool {
	for {
		t.mu.Lock()
		if t.state == stateCanceled {
			t.mu.Unlock()
			return false
		}
		if t.state == stateIdle {
			t.state = stateWaiting
		}
		if t.forced {
			t.forced = false
			t.state = stateRunning
			t.mu.Unlock()
			return true
		}
		remaining := t.fireAt.Sub(s.clock.Now())
		if remaining <= 0 {
			t.state = stateRunning
			t.mu.Unlock()
			return true
		}
		t.mu.Unlock()

		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
		case <-t.wake:
			timer.Stop()
		}
	}
}

func (s *Scheduler) runOneShot(t *task) {
	if !s.waitUntilDue(t) {
		return
	}

	t.mu.Lock()
	cb := t.cb
	arg := t.arg
	t.arg = nil // the callback owns arg from here on
	t.mu.Unlock()

	s.fired(t)
	cb(arg)
}

func (s *Scheduler) runRepeating(t *task) {
	for {
		if !s.waitUntilDue(t) {
			return
		}

		t.mu.Lock()
		cb := t.cb
		arg := t.arg
		t.mu.Unlock()

		start := s.clock.Now()
		s.fired(t)
		cb(arg)

		t.mu.Lock()
		if t.stopped || t.state == stateCanceled {
			t.mu.Unlock()
			return
		}
		t.state = stateWaiting
		switch t.kind {
		case kindFixedDelay:
			t.fireAt = s.clock.Now().Add(t.interval)
		case kindFixedRate:
			// Measured from the previous run's start; an overlong run
			// yields a non-positive remaining wait and immediate catch-up.
			t.fireAt = start.Add(t.interval)
		case kindCron:
			t.fireAt = t.cronSched.Next(s.clock.Now().In(s.location))
		}
		t.mu.Unlock()
	}
}

func (s *Scheduler) runBackoff(t *task) {
	for {
		if !s.waitUntilDue(t) {
			return
		}

		t.mu.Lock()
		run := t.run
		arg := t.arg
		t.mu.Unlock()

		s.fired(t)
		if run(arg) {
			t.mu.Lock()
			success := t.success
			t.arg = nil
			t.mu.Unlock()
			if success != nil {
				success(arg)
			}
			return
		}

		t.mu.Lock()
		if t.stopped || t.state == stateCanceled {
			t.mu.Unlock()
			return
		}
		t.state = stateWaiting
		t.curDelay += t.increment
		if t.curDelay > t.maxDelay {
			t.curDelay = t.maxDelay
		}
		t.fireAt = s.clock.Now().Add(t.curDelay)
		t.mu.Unlock()
	}
}

func (s *Scheduler) fired(t *task) {
	if s.metrics != nil {
		s.metrics.TimerTasksFired.WithLabelValues(s.name, t.kind.String()).Inc()
	}
}
