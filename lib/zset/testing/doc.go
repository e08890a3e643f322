// Package testing provides a shared conformance test suite for
// implementations of the zset.IZSetStore interface, plus a ManualClock
// helper for tests that need to cross expiry boundaries without sleeping.
//
// Every binding runs the same suite through a small Harness that abstracts
// how time is advanced (manual clock for the in-memory store, real sleeps
// for the Redis store), keeping the observable semantics of all bindings
// identical.
package testing
