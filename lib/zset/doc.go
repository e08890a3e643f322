// Package zset defines the ordered-set store abstraction consumed by the
// multimap engine. A conforming store holds, per key, a set of unique byte
// members each tagged with a numeric score, and supports score-range
// queries and deletions plus whole-key expiration at an absolute timestamp.
//
// The package focuses on:
//   - A unified interface (IZSetStore) over different ordered-set backends
//   - Pipelined, non-transactional batching of sub-operations
//     (IZSetPipeline) with per-query results in submission order
//
// Implementations:
//
//	The package includes two implementations of the IZSetStore interface:
//
//	- Redis Store (rstore): binds the interface to a Redis server using
//	  sorted sets (ZADD, ZRANGEBYSCORE, ZREMRANGEBYSCORE) and the native
//	  key TTL mechanism (EXPIREAT). This is the intended production
//	  backend. Available in "github.com/ValentinKolb/zMap/lib/zset/rstore".
//
//	- Memory Store (mstore): a single-process, in-memory engine with the
//	  same semantics and an injectable clock. It serves tests and
//	  single-node embedding without a Redis server. Available in
//	  "github.com/ValentinKolb/zMap/lib/zset/mstore".
//
// Client-library call-convention differences (e.g. how a particular Redis
// client version expects sorted-set inserts to be spelled) are an internal
// concern of the individual bindings and never leak through this interface.
package zset
