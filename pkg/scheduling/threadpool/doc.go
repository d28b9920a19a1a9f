/*
Package threadpool provides an elastic worker pool with a bounded shared
backlog.

A pool keeps minThreads workers alive permanently and grows on demand up
to maxThreads when every current worker is busy; workers beyond the
minimum retire after sitting idle past the idle timeout. Growth is
monotonic per burst: the pool never kills a worker just to make room for
a differently-sized one.

	p, err := threadpool.New("camera-events", 1, 8, 30*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Destroy()

	err = p.AddTask(func(arg interface{}) {
		processClip(arg.(*Clip))
	}, clip, func(arg interface{}) {
		arg.(*Clip).Close()
	})

Unlike the serial executor, the pool provides no cross-task ordering once
more than one worker is active. A panicking task is recovered and logged;
the worker survives.
*/
package threadpool
