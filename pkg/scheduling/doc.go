// Package scheduling groups the three task-execution primitives: timer
// (delayed and repeating tasks), executor (strict serial execution) and
// threadpool (elastic concurrent execution).
//
// Pick by ordering requirement: the timer decides WHEN a task runs, the
// executor guarantees tasks run one at a time in submission order, and
// the pool runs tasks concurrently with no ordering guarantee at all.
package scheduling
