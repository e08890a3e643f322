// Package mstore provides an in-memory implementation of the
// zset.IZSetStore interface.
//
// The store keeps one ordered set per key in an xsync.MapOf and evaluates
// whole-key expiration lazily whenever a key is accessed, there is no
// background sweeper. The clock is injectable through Options, which lets
// tests advance time manually instead of sleeping.
//
// The implementation mirrors the observable semantics of the Redis binding
// (rstore): unique members, score replacement on re-add, inclusive range
// bounds and score-then-value result ordering. Pipelines apply their
// sub-operations sequentially without cross-operation atomicity.
package mstore
