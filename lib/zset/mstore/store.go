package mstore

import (
	"sort"
	"sync"
	"time"

	"github.com/ValentinKolb/zMap/lib/zset"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the memory store behavior during initialization
type Options struct {
	// Clock returns the current unix time in whole seconds. It is consulted
	// for whole-key expiration checks. nil = wall clock.
	Clock func() int64
}

// DefaultOptions returns the default memory store options
func DefaultOptions() *Options {
	return &Options{
		Clock: func() int64 { return time.Now().Unix() },
	}
}

// --------------------------------------------------------------------------
// Core store structure
// --------------------------------------------------------------------------

// orderedSet holds the members of one key together with the key's own
// expiration timestamp. Access is serialized by the per-set mutex.
type orderedSet struct {
	mu       sync.Mutex
	members  map[string]int64 // raw value -> score
	expireAt int64            // unix seconds, 0 = no whole-key expiry
}

// storeImpl implements an in-memory ordered-set store with the same
// observable semantics as the Redis binding: members are unique, re-adding
// replaces the score, range bounds are inclusive and whole-key expiry is
// evaluated lazily on access.
type storeImpl struct {
	keys  *xsync.MapOf[string, *orderedSet]
	clock func() int64
}

// NewMemoryStore creates a new in-memory store instance with the specified
// options (optional). This store implementation is not remote and only
// works within a single process. It is primarily used by tests and for
// embedding without a Redis server.
func NewMemoryStore(opts *Options) zset.IZSetStore {
	if opts == nil {
		opts = DefaultOptions()
	}
	clock := opts.Clock
	if clock == nil {
		clock = DefaultOptions().Clock
	}

	return &storeImpl{
		keys:  xsync.NewMapOf[string, *orderedSet](),
		clock: clock,
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// live returns the set for key, or nil if the key does not exist or its
// whole-key expiry has elapsed. An elapsed key is removed as a side effect,
// matching the store-native behavior of lazily evicting expired keys.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *storeImpl) live(key string) *orderedSet {
	set, ok := s.keys.Load(key)
	if !ok {
		return nil
	}

	set.mu.Lock()
	expired := set.expireAt != 0 && s.clock() >= set.expireAt
	set.mu.Unlock()

	if expired {
		s.keys.Delete(key)
		return nil
	}
	return set
}

// getOrCreate returns the live set for key, creating an empty one if the
// key does not exist (or only exists as an expired leftover).
func (s *storeImpl) getOrCreate(key string) *orderedSet {
	if set := s.live(key); set != nil {
		return set
	}
	set, _ := s.keys.LoadOrStore(key, &orderedSet{members: make(map[string]int64)})
	return set
}

// --------------------------------------------------------------------------
// Interface Methods (docu see zset/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Pipeline() zset.IZSetPipeline {
	return &pipelineImpl{store: s}
}

func (s *storeImpl) DeleteAll(keys ...string) error {
	for _, key := range keys {
		s.keys.Delete(key)
	}
	return nil
}

func (s *storeImpl) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// pipelineImpl collects sub-operations as closures and applies them in
// submission order on Exec. There is no cross-operation atomicity: each
// sub-operation locks only the set it touches, exactly as the remote
// binding applies its commands one by one.
type pipelineImpl struct {
	store *storeImpl
	ops   []func(results *[][][]byte)
}

func (p *pipelineImpl) ExpireAt(key string, at int64) {
	p.ops = append(p.ops, func(*[][][]byte) {
		// like EXPIREAT, a no-op for keys that do not (or no longer) exist
		set := p.store.live(key)
		if set == nil {
			return
		}
		set.mu.Lock()
		set.expireAt = at
		set.mu.Unlock()
	})
}

func (p *pipelineImpl) Add(key string, members ...zset.Member) {
	p.ops = append(p.ops, func(*[][][]byte) {
		if len(members) == 0 {
			return
		}
		set := p.store.getOrCreate(key)
		set.mu.Lock()
		for _, m := range members {
			set.members[string(m.Value)] = m.Score
		}
		set.mu.Unlock()
	})
}

func (p *pipelineImpl) RemoveRangeByScore(key string, min, max int64) {
	p.ops = append(p.ops, func(*[][][]byte) {
		set := p.store.live(key)
		if set == nil {
			return
		}
		set.mu.Lock()
		for value, score := range set.members {
			if score >= min && score <= max {
				delete(set.members, value)
			}
		}
		set.mu.Unlock()
	})
}

func (p *pipelineImpl) RangeByScore(key string, min, max int64) {
	p.ops = append(p.ops, func(results *[][][]byte) {
		set := p.store.live(key)
		if set == nil {
			*results = append(*results, [][]byte{})
			return
		}

		type scored struct {
			value string
			score int64
		}

		set.mu.Lock()
		matches := make([]scored, 0, len(set.members))
		for value, score := range set.members {
			if score >= min && score <= max {
				matches = append(matches, scored{value, score})
			}
		}
		set.mu.Unlock()

		// store-native ordering: by score, then by raw value
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].score != matches[j].score {
				return matches[i].score < matches[j].score
			}
			return matches[i].value < matches[j].value
		})

		raw := make([][]byte, len(matches))
		for i, m := range matches {
			raw[i] = []byte(m.value)
		}
		*results = append(*results, raw)
	})
}

func (p *pipelineImpl) Exec() ([][][]byte, error) {
	var results [][][]byte
	for _, op := range p.ops {
		op(&results)
	}
	p.ops = nil
	return results, nil
}
