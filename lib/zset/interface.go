package zset

import "math"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// ScoreMax is the upper range bound meaning "no upper limit". Bindings map it
// to their native representation of positive infinity (e.g. "+inf" in Redis).
const ScoreMax int64 = math.MaxInt64

// Member is a single (value, score) pair held inside an ordered set.
// The value is an opaque payload; the store treats it as the set member,
// so re-adding an existing value with a new score replaces the score
// instead of duplicating the member.
type Member struct {
	Value []byte // raw stored representation of the member
	Score int64  // numeric score, unix seconds in this project
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IZSetStore is the generic interface for an ordered-set store with
// whole-key expiration. It is the external collaborator of the multimap
// engine: the engine never talks to a concrete store directly.
//
// All batched operations go through a pipeline (see IZSetPipeline).
// Only whole-key bulk deletion is a direct, synchronous call.
type IZSetStore interface {
	// Pipeline returns a new, empty batch. Queued sub-operations are
	// submitted together by Exec in one non-transactional round trip.
	Pipeline() IZSetPipeline

	// DeleteAll removes the given keys in one store-level call.
	// Keys that do not exist are ignored, no error is returned for them.
	DeleteAll(keys ...string) error

	// Close releases the underlying store handle.
	Close() error
}

// IZSetPipeline collects sub-operations for one batched round trip.
//
// The batch is non-transactional and non-blocking: sub-operations are
// applied in submission order, partial completion inside the store is
// possible and is not rolled back. Individual sub-operations surface no
// success/failure signal; Exec either completes or fails as a whole.
//
// A pipeline is single-use: after Exec it must be discarded.
type IZSetPipeline interface {
	// ExpireAt schedules a whole-key expiration at the given unix timestamp.
	ExpireAt(key string, at int64)

	// Add schedules an insert/update of the given members. For members that
	// already exist the score is replaced, the set never holds duplicates.
	Add(key string, members ...Member)

	// RemoveRangeByScore schedules the deletion of all members with
	// min <= score <= max (both bounds inclusive).
	RemoveRangeByScore(key string, min, max int64)

	// RangeByScore schedules a query for all members with
	// min <= score <= max (both bounds inclusive, ScoreMax = no upper
	// bound). Results are returned by Exec in store-native order
	// (by score, then by raw value).
	RangeByScore(key string, min, max int64)

	// Exec submits the batch and returns one raw result slice per queued
	// RangeByScore, in submission order. Mutating sub-operations contribute
	// no entry. A missing key yields an empty slice, not an error.
	Exec() ([][][]byte, error)
}
