package multimap

import (
	"time"

	"github.com/ValentinKolb/zMap/lib/multimap/cast"
	"github.com/ValentinKolb/zMap/lib/zset"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Constants and Options
// --------------------------------------------------------------------------

const (
	// DefaultTTL is the default time-to-live in seconds (60 min)
	DefaultTTL int64 = 3600

	// keySeparator joins the configured prefix and a key name
	keySeparator = ":"
)

// Clock returns the current unix time in whole seconds. Scores have
// second granularity; the one-tick offsets below depend on it.
type Clock func() int64

// Options configures the multimap engine behavior during initialization
type Options struct {
	// TTL is the time in seconds after which values are considered stale.
	// After TTL has elapsed without new values being added to a key, the
	// key itself is removed by the store. 0 = use DefaultTTL.
	TTL int64
	// Clock overrides the time source. nil = wall clock.
	Clock Clock
}

// DefaultOptions returns the default multimap engine options
func DefaultOptions() *Options {
	return &Options{
		TTL:   DefaultTTL,
		Clock: func() int64 { return time.Now().Unix() },
	}
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricAdds    = metrics.GetOrCreateCounter(`zmap_multimap_ops_total{op="add"}`)
	metricGets    = metrics.GetOrCreateCounter(`zmap_multimap_ops_total{op="get"}`)
	metricDeletes = metrics.GetOrCreateCounter(`zmap_multimap_ops_total{op="delete"}`)
)

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// multiMapImpl implements the IMultiMap interface on top of an ordered-set
// store. Values are stored as set members whose score is the timestamp at
// which the value expires (write time + TTL, not the write time itself).
// Reads filter for score > now, writes opportunistically purge members
// with score <= now. This double duty of the score is what removes the
// need for any background sweeper.
type multiMapImpl[T any] struct {
	store  zset.IZSetStore
	prefix string
	ttl    int64
	clock  Clock
	caster cast.ICaster[T]
}

// New creates a new multimap engine instance with the specified options
// (optional).
//
//   - store: the ordered-set store backing the multimap
//   - keyPrefix: namespace prefix, every key name resolves to
//     "<keyPrefix>:<name>" in the store
//   - caster: translates values to/from the stored representation
func New[T any](store zset.IZSetStore, keyPrefix string, caster cast.ICaster[T], opts *Options) IMultiMap[T] {
	if opts == nil {
		opts = DefaultOptions()
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	clock := opts.Clock
	if clock == nil {
		clock = DefaultOptions().Clock
	}

	return &multiMapImpl[T]{
		store:  store,
		prefix: keyPrefix,
		ttl:    ttl,
		clock:  clock,
		caster: caster,
	}
}

// NewDefault creates a multimap engine with the default int64 caster and
// default options.
func NewDefault(store zset.IZSetStore, keyPrefix string) IMultiMap[int64] {
	return New[int64](store, keyPrefix, cast.NewIntCaster(), nil)
}

// --------------------------------------------------------------------------
// Score Clock and Key Namespacing
// --------------------------------------------------------------------------

// currentScore returns the current timestamp as score.
func (m *multiMapImpl[T]) currentScore() int64 {
	return m.clock()
}

// writeScore returns the future timestamp (now + TTL) assigned to values
// inserted now.
func (m *multiMapImpl[T]) writeScore() int64 {
	return m.currentScore() + m.ttl
}

// key returns name namespaced with the configured prefix. The mapping is
// deterministic: the same (prefix, name) always yields the same store key.
func (m *multiMapImpl[T]) key(name string) string {
	return m.prefix + keySeparator + name
}

// --------------------------------------------------------------------------
// Interface Methods (docu see multimap/interface.go)
// --------------------------------------------------------------------------

func (m *multiMapImpl[T]) Add(name string, values ...T) error {
	return m.AddMany([]KeyValues[T]{{Name: name, Values: values}})
}

func (m *multiMapImpl[T]) AddMany(entries []KeyValues[T]) error {
	// one write score for the entire call, captured once and not
	// re-sampled per value, so a batch insert is internally consistent
	score := m.writeScore()

	scored := make([]KeyScoredValues[T], len(entries))
	for i, entry := range entries {
		values := make([]ScoredValue[T], len(entry.Values))
		for j, value := range entry.Values {
			values[j] = ScoredValue[T]{Value: value, ExpireAt: score}
		}
		scored[i] = KeyScoredValues[T]{Name: entry.Name, Values: values}
	}
	return m.AddManyWithScores(scored)
}

func (m *multiMapImpl[T]) AddManyWithScores(entries []KeyScoredValues[T]) error {
	if len(entries) == 0 {
		return nil
	}
	metricAdds.Inc()

	/*
		Note: The sub-operations below are ordered so that every prefix of
		the batch leaves each key in a valid, monotonic state. That is why
		no transaction and no rollback are needed:

		 1. whole-key expiry refresh first - if the rest of the batch never
		    runs, the key merely lives on with its old members, it cannot
		    grow stale improperly
		 2. member insert second - members only ever gain entries or move
		    scores forward
		 3. purge of already-expired members last - if it does not run, the
		    stale members are invisible to reads anyway (score filter) and
		    the next write purges them

		Reordering these breaks the partial-failure argument.
	*/

	pipe := m.store.Pipeline()
	now := m.currentScore()

	for _, entry := range entries {
		key := m.key(entry.Name)

		// the store's expire-at is inclusive, the extra tick keeps the key
		// alive for the full final second of its newest members
		pipe.ExpireAt(key, now+m.ttl+1)

		// a pair may carry no values, the expiry refresh and the purge
		// still run for its key
		if len(entry.Values) > 0 {
			members := make([]zset.Member, len(entry.Values))
			for i, sv := range entry.Values {
				raw, err := m.caster.Encode(sv.Value)
				if err != nil {
					return err
				}
				members[i] = zset.Member{Value: raw, Score: sv.ExpireAt}
			}
			pipe.Add(key, members...)
		}

		// purge everything that has expired as of this write (inclusive)
		pipe.RemoveRangeByScore(key, 0, now)
	}

	_, err := pipe.Exec()
	return err
}

func (m *multiMapImpl[T]) Get(name string) (Values[T], error) {
	results, err := m.GetMany(name)
	if err != nil {
		return Values[T]{}, err
	}
	return results[0], nil
}

func (m *multiMapImpl[T]) GetMany(names ...string) ([]Values[T], error) {
	if len(names) == 0 {
		return nil, nil
	}
	metricGets.Inc()

	pipe := m.store.Pipeline()

	// strictly-future members only: a member whose score equals the
	// current second already counts as expired
	threshold := m.currentScore() + 1

	for _, name := range names {
		pipe.RangeByScore(m.key(name), threshold, zset.ScoreMax)
	}

	// reads never purge, stale members stay behind for the next write
	results, err := pipe.Exec()
	if err != nil {
		return nil, err
	}

	values := make([]Values[T], len(names))
	for i := range names {
		var raw [][]byte
		if i < len(results) {
			raw = results[i]
		}
		values[i] = Values[T]{raw: raw, caster: m.caster}
	}
	return values, nil
}

func (m *multiMapImpl[T]) Delete(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	metricDeletes.Inc()

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = m.key(name)
	}
	return m.store.DeleteAll(keys...)
}
