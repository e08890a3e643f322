// Package multimap provides a multimap with per-value expiration backed by
// an ordered-set store, without the need for a background job to delete
// old values.
//
// Values are held in the store as ordered-set members:
//
//	prefix:key1: { (score1, value1), (score2, value2), ... }
//	prefix:key2: { (score3, value3), (score4, value4), ... }
//
// where the score is the timestamp at which the value expires (write time
// plus TTL). Reads filter for scores strictly in the future, and every
// write opportunistically garbage-collects members whose score has passed.
// The key itself carries the store's native whole-key TTL, refreshed on
// every write, so an idle key disappears entirely after the quiet period.
// Together these simulate a multimap with per-value expiration on top of
// just two store primitives.
//
// Expiration is approximate by design: resolution is bound by the
// one-second clock granularity, and physically stale members may survive
// until the next write to their key. They are never visible to readers.
//
// Usage:
//
//	store, _ := rstore.NewRedisStore(rstore.Config{Addr: "localhost:6379"})
//	mm := multimap.NewDefault(store, "multimap")
//
//	_ = mm.Add("a", 1, 2, 3)
//	values, _ := mm.Get("a")
//	ints, _ := values.Collect() // [1 2 3]
package multimap
