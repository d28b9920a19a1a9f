package threadutil

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex is a mutual exclusion lock with misuse detection. Depending on
// the process-wide lock policy, detected misuse (lock-order inversion,
// a goroutine waiting far past the deadlock timeout, which covers the
// double-lock case) either aborts the process or is reported through a
// caller-supplied callback.
//
// The zero value is an unlocked mutex.
type Mutex = deadlock.Mutex

// RWMutex is a reader/writer lock with the same misuse detection as Mutex.
type RWMutex = deadlock.RWMutex

// Policy selects how detected lock misuse is handled.
type Policy int

const (
	// PolicyAbort prints the detector's report to stderr and exits the
	// process. Misuse indicates corrupted invariants that cannot be
	// recovered from, so development and test builds want this.
	PolicyAbort Policy = iota

	// PolicyReport forwards the detector's report to the callback given
	// to SetLockPolicy and lets the process continue. Release builds of
	// long-running services use this.
	PolicyReport

	// PolicyOff disables detection; Mutex/RWMutex behave like plain
	// sync.Mutex/sync.RWMutex.
	PolicyOff
)

var policyMu sync.Mutex

// SetLockPolicy configures the process-wide misuse policy. The report
// callback is only used with PolicyReport and receives a human-readable
// description of the detected misuse. timeout bounds how long a lock
// acquisition may wait before it is flagged; zero keeps the current value.
//
// SetLockPolicy should be called once during startup, before any checked
// mutex is used.
func SetLockPolicy(p Policy, timeout time.Duration, report func(string)) {
	policyMu.Lock()
	defer policyMu.Unlock()

	switch p {
	case PolicyOff:
		deadlock.Opts.Disable = true
		return
	case PolicyReport:
		deadlock.Opts.Disable = false
		deadlock.Opts.DisableLockOrderDetection = false
		deadlock.Opts.OnPotentialDeadlock = func() {
			if report != nil {
				report("potential deadlock or lock misuse detected; see log buffer")
			}
		}
	case PolicyAbort:
		deadlock.Opts.Disable = false
		deadlock.Opts.DisableLockOrderDetection = false
		deadlock.Opts.OnPotentialDeadlock = func() {
			fmt.Fprintln(os.Stderr, "fatal: lock misuse detected, aborting")
			os.Exit(2)
		}
	}
	if timeout > 0 {
		deadlock.Opts.DeadlockTimeout = timeout
	}
}
