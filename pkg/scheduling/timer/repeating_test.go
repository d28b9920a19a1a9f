package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/zilker-sdk-sub009/internal/testutil"
	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
)

func TestFixedDelayRepeats(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var count atomic.Int32
	h, err := s.ScheduleFixedDelay(10*time.Millisecond, func(arg interface{}) {
		assert.Equal(t, "ctx", arg)
		count.Add(1)
	}, "ctx")
	require.NoError(t, err)

	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return count.Load() >= 3
	}, "task did not repeat")

	// The argument stays owned by the task across runs; Cancel hands it
	// back when the loop stops.
	arg, ok := s.Cancel(h)
	if ok {
		assert.Equal(t, "ctx", arg)
	}
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return s.Pending() == 0
	}, "repeating task not reclaimed")

	final := count.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, final, count.Load(), "task kept running after cancel")
}

func TestFixedRateRepeats(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var count atomic.Int32
	_, err := s.ScheduleFixedRate(10*time.Millisecond, func(interface{}) {
		count.Add(1)
	}, nil)
	require.NoError(t, err)

	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return count.Load() >= 3
	}, "task did not repeat")
}

func TestRepeatingValidation(t *testing.T) {
	s := New()
	defer s.Shutdown()

	_, err := s.ScheduleFixedDelay(0, func(interface{}) {}, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)

	_, err = s.ScheduleFixedRate(-time.Second, func(interface{}) {}, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)

	_, err = s.ScheduleFixedDelay(time.Second, nil, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)
}

func TestBackoffRetriesUntilSuccess(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var attempts atomic.Int32
	var successes atomic.Int32
	successArg := make(chan interface{}, 1)

	_, err := s.ScheduleBackoff(5*time.Millisecond, 20*time.Millisecond, 5*time.Millisecond,
		func(arg interface{}) bool {
			return attempts.Add(1) >= 3
		},
		func(arg interface{}) {
			successes.Add(1)
			successArg <- arg
		},
		"session")
	require.NoError(t, err)

	select {
	case arg := <-successArg:
		assert.Equal(t, "session", arg)
	case <-time.After(testutil.TestTimeout):
		t.Fatal("back-off task never succeeded")
	}

	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return s.Pending() == 0
	}, "back-off task not reclaimed")

	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, int32(1), successes.Load())
}

func TestBackoffDelayIsCapped(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	s := NewWithConfig(Config{Clock: clock})
	defer s.Shutdown()

	h, err := s.ScheduleBackoff(time.Hour, 3*time.Hour, time.Hour,
		func(interface{}) bool { return false }, nil, nil)
	require.NoError(t, err)

	first, ok := s.NextFireTime(h)
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(time.Hour), first)

	// Force a run without waiting out the hour; the next pause grows by
	// one increment.
	require.True(t, s.ForceExecute(h))
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		at, ok := s.NextFireTime(h)
		return ok && at.Equal(clock.Now().Add(2*time.Hour))
	}, "delay did not grow after a failed attempt")

	// Two more failed attempts; the pause clamps at maxDelay.
	require.True(t, s.ForceExecute(h))
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		at, ok := s.NextFireTime(h)
		return ok && at.Equal(clock.Now().Add(3*time.Hour))
	}, "delay did not reach the cap")

	require.True(t, s.ForceExecute(h))
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		at, ok := s.NextFireTime(h)
		return ok && at.Equal(clock.Now().Add(3*time.Hour))
	}, "delay exceeded the cap")
}

func TestBackoffCancelReturnsArg(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var successes atomic.Int32
	h, err := s.ScheduleBackoff(time.Hour, time.Hour, time.Hour,
		func(interface{}) bool { return true },
		func(interface{}) { successes.Add(1) },
		"pending-request")
	require.NoError(t, err)

	arg, ok := s.Cancel(h)
	require.True(t, ok)
	assert.Equal(t, "pending-request", arg)

	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return s.Pending() == 0
	}, "canceled back-off task not reclaimed")
	assert.Equal(t, int32(0), successes.Load())
}

func TestBackoffValidation(t *testing.T) {
	s := New()
	defer s.Shutdown()

	run := func(interface{}) bool { return true }

	_, err := s.ScheduleBackoff(time.Second, time.Second, time.Second, nil, nil, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)

	_, err = s.ScheduleBackoff(0, time.Second, time.Second, run, nil, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)

	_, err = s.ScheduleBackoff(time.Second, time.Second, 0, run, nil, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)

	// maxDelay below initDelay is rejected.
	_, err = s.ScheduleBackoff(2*time.Second, time.Second, time.Second, run, nil, nil)
	require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)
}

func TestShortCircuitSkipsCurrentPause(t *testing.T) {
	s := New()
	defer s.Shutdown()

	fired := make(chan struct{}, 4)
	h, err := s.ScheduleFixedDelay(time.Hour, func(interface{}) {
		fired <- struct{}{}
	}, nil)
	require.NoError(t, err)

	require.True(t, s.ShortCircuit(h))
	select {
	case <-fired:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("short-circuited task never ran")
	}

	// The loop resumes its normal cadence afterwards.
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return s.IsWaiting(h)
	}, "task did not return to waiting")
	at, ok := s.NextFireTime(h)
	require.True(t, ok)
	assert.Greater(t, time.Until(at), 30*time.Minute)
}

func TestChangeInterval(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var count atomic.Int32
	h, err := s.ScheduleFixedDelay(time.Hour, func(interface{}) {
		count.Add(1)
	}, nil)
	require.NoError(t, err)

	require.True(t, s.ChangeInterval(h, 10*time.Millisecond))
	testutil.WaitFor(t, testutil.TestTimeout, func() bool {
		return count.Load() >= 2
	}, "new interval did not take effect")

	assert.False(t, s.ChangeInterval(h, 0))
	assert.False(t, s.ChangeInterval(Handle(99999), time.Second))

	// One-shot and back-off tasks are not eligible.
	oh, err := s.ScheduleDelay(time.Hour, func(interface{}) {}, nil)
	require.NoError(t, err)
	assert.False(t, s.ChangeInterval(oh, time.Second))

	bh, err := s.ScheduleBackoff(time.Hour, time.Hour, time.Hour,
		func(interface{}) bool { return true }, nil, nil)
	require.NoError(t, err)
	assert.False(t, s.ChangeInterval(bh, time.Second))
}
