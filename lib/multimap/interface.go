package multimap

import (
	"github.com/ValentinKolb/zMap/lib/multimap/cast"
)

// --------------------------------------------------------------------------
// Input Types
// --------------------------------------------------------------------------

// KeyValues pairs a key name with the values to insert for it.
type KeyValues[T any] struct {
	Name   string
	Values []T
}

// ScoredValue is a value together with the absolute unix timestamp (whole
// seconds) after which the value should stop being visible.
type ScoredValue[T any] struct {
	Value    T
	ExpireAt int64
}

// KeyScoredValues pairs a key name with explicitly scored values, for bulk
// imports where the expiry is pre-computed per value.
type KeyScoredValues[T any] struct {
	Name   string
	Values []ScoredValue[T]
}

// --------------------------------------------------------------------------
// Result Type
// --------------------------------------------------------------------------

// Values is a finite sequence of decoded values backed by one
// already-fetched batch result. Iteration decodes on the fly through the
// caster; iterating again replays the same fetched snapshot, it does not
// query the store again. The order is the store-native one (by score, then
// by raw representation), callers must not rely on insertion order.
type Values[T any] struct {
	raw    [][]byte
	caster cast.ICaster[T]
}

// Len returns the number of live values in the snapshot.
func (v Values[T]) Len() int {
	return len(v.raw)
}

// Each calls fn for every decoded value in snapshot order. Iteration stops
// early when fn returns false. A decode error aborts the iteration and is
// returned as-is.
func (v Values[T]) Each(fn func(value T) bool) error {
	for _, raw := range v.raw {
		value, err := v.caster.Decode(raw)
		if err != nil {
			return err
		}
		if !fn(value) {
			return nil
		}
	}
	return nil
}

// Collect decodes the whole snapshot into a slice. An empty snapshot
// yields an empty (non-nil) slice.
func (v Values[T]) Collect() ([]T, error) {
	values := make([]T, 0, len(v.raw))
	err := v.Each(func(value T) bool {
		values = append(values, value)
		return true
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IMultiMap is the interface for a multimap with per-value expiration
// backed by an ordered-set store. One key maps to a set of values; every
// value carries an expiry timestamp and silently disappears from reads once
// it has passed. An idle key vanishes entirely after the configured TTL
// without any background job.
//
// All operations are synchronous single round trips against the store.
// The engine performs no retries and holds no locks: concurrent writers to
// the same key interleave at store granularity and converge because every
// sub-operation is idempotent and monotonic.
//
// There is no distinction between a key that never existed and a key whose
// values have all expired, both read as empty. Empty value or name lists
// are valid no-ops, not errors.
type IMultiMap[T any] interface {
	// Add inserts values at the given key name, stamped with the current
	// write score (now + TTL).
	Add(name string, values ...T) error

	// AddMany bulk-inserts values for several keys in one batched round
	// trip. All values across the entire call receive the same write score,
	// captured once at the start.
	AddMany(entries []KeyValues[T]) error

	// AddManyWithScores bulk-inserts values whose expiry timestamps were
	// pre-computed by the caller. The whole-key expiry of every touched key
	// is still refreshed to now + TTL.
	AddManyWithScores(entries []KeyScoredValues[T]) error

	// Get returns the values stored at the given key name that have not
	// expired yet.
	Get(name string) (Values[T], error)

	// GetMany returns the live values of several keys in one batched round
	// trip, in the same order as the requested names. Each key's sequence
	// is independently empty or populated.
	GetMany(names ...string) ([]Values[T], error)

	// Delete removes the given keys entirely in one store-level call.
	// Missing keys are not an error.
	Delete(names ...string) error
}
