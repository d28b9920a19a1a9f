/*
Package executor provides a serial task executor: one dedicated worker
goroutine draining a bounded queue strictly in submission order.

It serializes operations that must not interleave (say, mutations to a
device database) without every caller needing its own lock:

	e, err := executor.New("devicedb")
	if err != nil {
		log.Fatal(err)
	}

	err = e.Submit(db, record, func(obj, arg interface{}) {
		obj.(*DeviceDB).Apply(arg.(*Record))
	}, func(obj, arg interface{}) {
		arg.(*Record).Release()
	})

Ownership of the (obj, arg) pair transfers to the executor on a
successful Submit; the free function always runs exactly once, whether
the task ran, was rejected, or was dropped during Destroy.

Two shutdown flavors exist: Destroy drops the backlog, DrainAndDestroy
runs every already-accepted task first. Both join the worker goroutine,
and both are safe to call from a task running on the executor itself.
*/
package executor
