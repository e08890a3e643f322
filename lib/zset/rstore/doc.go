// Package rstore provides the Redis implementation of the
// zset.IZSetStore interface.
//
// The mapping to Redis primitives is direct:
//
//	Add                -> ZADD
//	RangeByScore       -> ZRANGEBYSCORE (inclusive bounds, "+inf" for ScoreMax)
//	RemoveRangeByScore -> ZREMRANGEBYSCORE (inclusive bounds)
//	ExpireAt           -> EXPIREAT
//	DeleteAll          -> DEL
//
// Pipelines use the client's non-transactional pipelining: commands travel
// in one round trip, are applied in order on the server and are not wrapped
// in MULTI/EXEC. A failed sub-command does not roll back the others.
//
// Issued commands and executed batches are counted via VictoriaMetrics
// counters (zmap_store_commands_total, zmap_store_batches_total).
package rstore
