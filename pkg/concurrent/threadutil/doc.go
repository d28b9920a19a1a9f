/*
Package threadutil provides named goroutine creation and a locking
discipline with misuse detection.

Spawn gives a goroutine a best-effort name (visible in pprof goroutine
profiles) and a Join handle, mirroring joinable OS threads:

	t := threadutil.Spawn("zigbee-reader", readLoop)
	t.Join()

Mutex and RWMutex are drop-in lock types that detect programming errors
such as lock-order inversions and goroutines stuck waiting on a lock.
The policy decides what detection does: abort the process (development),
report through a callback (release), or nothing at all:

	threadutil.SetLockPolicy(threadutil.PolicyAbort, 30*time.Second, nil)
*/
package threadutil
