package timer

import (
	"time"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
	"github.com/rdkcentral/zilker-sdk-sub009/pkg/common/validation"
)

// ScheduleFixedDelay schedules cb to run repeatedly, pausing interval
// after each run completes before the next one starts. The task repeats
// until canceled.
func (s *Scheduler) ScheduleFixedDelay(interval time.Duration, cb Callback, arg interface{}) (Handle, error) {
	if cb == nil {
		return InvalidHandle, validation.ValidateNotNil("timer", "callback", nil)
	}
	if err := validation.ValidatePositiveDuration("timer", "interval", interval); err != nil {
		return InvalidHandle, err
	}

	t := &task{
		kind:     kindFixedDelay,
		cb:       cb,
		arg:      arg,
		interval: interval,
		fireAt:   s.clock.Now().Add(interval),
	}
	return s.register(t)
}

// ScheduleFixedRate schedules cb to run repeatedly at a fixed rate: the
// next run is due interval after the previous run started, not after it
// finished. A run that overstays its interval is followed immediately by
// the next one.
func (s *Scheduler) ScheduleFixedRate(interval time.Duration, cb Callback, arg interface{}) (Handle, error) {
	if cb == nil {
		return InvalidHandle, validation.ValidateNotNil("timer", "callback", nil)
	}
	if err := validation.ValidatePositiveDuration("timer", "interval", interval); err != nil {
		return InvalidHandle, err
	}

	t := &task{
		kind:     kindFixedRate,
		cb:       cb,
		arg:      arg,
		interval: interval,
		fireAt:   s.clock.Now().Add(interval),
	}
	return s.register(t)
}

// ScheduleBackoff schedules run to fire after initDelay, then again after
// a pause that grows by increment per iteration, capped at maxDelay,
// until run returns true. success then runs exactly once with the same
// argument, giving the caller its cleanup point. Cancel stops the loop at
// any pause and hands the argument back instead.
func (s *Scheduler) ScheduleBackoff(initDelay, maxDelay, increment time.Duration, run RunFunc, success SuccessFunc, arg interface{}) (Handle, error) {
	if run == nil {
		return InvalidHandle, validation.ValidateNotNil("timer", "run", nil)
	}
	if err := validation.ValidatePositiveDuration("timer", "initDelay", initDelay); err != nil {
		return InvalidHandle, err
	}
	if err := validation.ValidatePositiveDuration("timer", "increment", increment); err != nil {
		return InvalidHandle, err
	}
	if maxDelay < initDelay {
		return InvalidHandle, zerrors.NewValidationError("timer", "maxDelay", maxDelay, "cannot be less than initDelay")
	}

	t := &task{
		kind:      kindBackoff,
		run:       run,
		success:   success,
		arg:       arg,
		curDelay:  initDelay,
		maxDelay:  maxDelay,
		increment: increment,
		fireAt:    s.clock.Now().Add(initDelay),
	}
	return s.register(t)
}

// ShortCircuit skips a repeating task's current pause so the next run
// starts immediately. The loop then resumes its normal cadence. Returns
// false if the task is unknown, running right now, or canceled.
func (s *Scheduler) ShortCircuit(h Handle) bool {
	return s.ForceExecute(h)
}

// ChangeInterval replaces a repeating task's interval. The current pause
// is re-anchored to now with the new interval; subsequent iterations use
// it as well. Back-off and cron tasks are not eligible.
func (s *Scheduler) ChangeInterval(h Handle, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	t := s.lookup(h)
	if t == nil || (t.kind != kindFixedDelay && t.kind != kindFixedRate) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == stateCanceled {
		return false
	}
	t.interval = interval
	if t.cancelable() {
		t.fireAt = s.clock.Now().Add(interval)
		t.wakeLocked()
	}
	return true
}
