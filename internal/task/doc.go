// Package task provides the bounded worker pool that runs paper generation
// unit jobs concurrently. The pool keeps a fixed set of core workers, grows
// with transient overflow workers under load, and falls back to running a
// job on the submitting goroutine when both the queue and the worker budget
// are exhausted, so no submitted job is ever dropped.
package task
