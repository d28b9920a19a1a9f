// Package zilkersdk provides the concurrency toolkit used by the hub
// services: delayed and repeating task scheduling, serial task
// execution, elastic worker pools and the bounded queues and thread
// helpers underneath them.
//
// The toolkit is organized into focused packages:
//
//   - pkg/scheduling/timer: delayed one-shot tasks, fixed-delay,
//     fixed-rate, back-off and cron repetition, with cancel handing the
//     task's argument back to its owner
//   - pkg/scheduling/executor: a single-worker executor running tasks
//     strictly in submission order
//   - pkg/scheduling/threadpool: an elastic pool bounded by min/max
//     workers with idle retirement
//   - pkg/concurrent/blockingqueue: the bounded blocking queue backing
//     the executor and pool
//   - pkg/concurrent/threadutil: named goroutines, joinable handles and
//     deadlock-checked mutexes
//   - pkg/metrics: optional Prometheus instrumentation for all of the
//     above
//
// Every component is safe for concurrent use, accounts for each
// goroutine it creates and reclaims all of them on shutdown. Task
// arguments follow a strict ownership contract: exactly one party
// releases each argument, whether the task ran, was canceled or was
// dropped during teardown.
package zilkersdk
