/*
Package timer provides delayed (one-shot) and repeating task scheduling
with opaque handles.

A Scheduler is an explicit registry: every schedule operation returns a
Handle, a process-unique monotonically increasing integer that references
the task without exposing its memory. After the callback runs or the task
is canceled the handle simply stops resolving; it is never reused for a
later task, so a stale handle is harmless.

One-shot scheduling:

	s := timer.New()
	defer s.Shutdown()

	h, err := s.ScheduleDelay(30*time.Second, func(arg interface{}) {
		rearmSensor(arg.(*sensor))
	}, sensor)

	// change of plans
	if arg, ok := s.Cancel(h); ok {
		releaseSensor(arg.(*sensor)) // caller owns the argument again
	}

Repeating flavors:

	s.ScheduleFixedDelay(time.Minute, poll, dev)   // pause measured from run end
	s.ScheduleFixedRate(time.Minute, poll, dev)    // pause measured from run start
	s.ScheduleCron("30 2 * * *", nightly, nil)     // wall-clock recurrence

Back-off retries a run with a growing pause until it reports success:

	s.ScheduleBackoff(time.Second, time.Minute, 5*time.Second,
		func(arg interface{}) bool { return tryConnect(arg) },
		func(arg interface{}) { markOnline(arg) },
		dev)

Cancellation is cooperative and racy by design: once a task has
progressed to running, Cancel is a no-op and the run completes. Callers
needing certainty must check Cancel's boolean result. Cancel hands the
original opaque argument back so the caller, not the scheduler, decides
how to release it.

Each task runs on its own goroutine; waits are timed and recomputed after
every wake, so Reschedule, ForceExecute and spurious wakes all behave
correctly. No user callback is ever invoked while a scheduler or task
lock is held.
*/
package timer
