package multimap

import (
	"sort"
	"testing"

	"github.com/ValentinKolb/zMap/lib/multimap/cast"
	"github.com/ValentinKolb/zMap/lib/zset"
	"github.com/ValentinKolb/zMap/lib/zset/mstore"
	zsettesting "github.com/ValentinKolb/zMap/lib/zset/testing"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// newTestMap creates an engine over a fresh in-memory store with a manual
// clock, so expiry boundaries can be crossed without sleeping
func newTestMap(t *testing.T, ttl int64) (IMultiMap[int64], *zsettesting.ManualClock, zset.IZSetStore) {
	t.Helper()
	clock := zsettesting.NewManualClock(1_700_000_000)
	store := mstore.NewMemoryStore(&mstore.Options{Clock: clock.Now})
	t.Cleanup(func() { _ = store.Close() })
	m := New[int64](store, "test", cast.NewIntCaster(), &Options{TTL: ttl, Clock: clock.Now})
	return m, clock, store
}

// collect fetches a key and returns its live values sorted numerically
func collect(t *testing.T, m IMultiMap[int64], name string) []int64 {
	t.Helper()
	result, err := m.Get(name)
	if err != nil {
		t.Fatalf("failed to get %s: %v", name, err)
	}
	values, err := result.Collect()
	if err != nil {
		t.Fatalf("failed to collect values of %s: %v", name, err)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

func expectInts(t *testing.T, got []int64, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestReadBeforeWrite(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	// a key that was never written reads as empty, not as an error
	expectInts(t, collect(t, m, "missing"))

	results, err := m.GetMany("a", "b")
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Len() != 0 {
			t.Errorf("result %d: expected empty, got %d values", i, result.Len())
		}
	}
}

func TestAddGet(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	if err := m.Add("animals", 1, 2, 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectInts(t, collect(t, m, "animals"), 1, 2, 3)
}

func TestDuplicateWritesAreIdempotent(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	// values form a set per key, re-adding the same value does not
	// duplicate it, it only refreshes its expiry
	if err := m.Add("k", 1, 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("k", 2, 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectInts(t, collect(t, m, "k"), 1, 2, 3)
}

func TestValueExpiry(t *testing.T) {
	m, clock, _ := newTestMap(t, 10)

	if err := m.Add("k", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// still visible during the final second of its lifetime
	clock.Advance(9)
	expectInts(t, collect(t, m, "k"), 1)

	// gone once the full TTL has elapsed
	clock.Advance(1)
	expectInts(t, collect(t, m, "k"))
}

func TestReAddRefreshesExpiry(t *testing.T) {
	m, clock, _ := newTestMap(t, 10)

	if err := m.Add("k", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	clock.Advance(9)

	// re-adding an existing value moves its expiry forward
	if err := m.Add("k", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	clock.Advance(9)
	expectInts(t, collect(t, m, "k"), 1)

	clock.Advance(1)
	expectInts(t, collect(t, m, "k"))
}

func TestWritesPurgeStaleValues(t *testing.T) {
	m, clock, store := newTestMap(t, 10)

	if err := m.Add("k", 1, 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	clock.Advance(9)
	expectInts(t, collect(t, m, "k"), 1, 2)

	// a write just before the boundary sees the old values and adds to them
	if err := m.Add("k", 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectInts(t, collect(t, m, "k"), 1, 2, 3)

	// past the boundary the old values are invisible to reads but still
	// physically present, reads never purge
	clock.Advance(2)
	expectInts(t, collect(t, m, "k"), 3)

	// the next write sweeps them out of the store for real
	if err := m.Add("k", 4); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectInts(t, collect(t, m, "k"), 3, 4)

	pipe := store.Pipeline()
	pipe.RangeByScore("test:k", 0, zset.ScoreMax)
	raw, err := pipe.Exec()
	if err != nil {
		t.Fatalf("failed to inspect store: %v", err)
	}
	if len(raw[0]) != 2 {
		t.Errorf("expected 2 physical members after purge, got %d", len(raw[0]))
	}
}

func TestWholeKeyExpiry(t *testing.T) {
	m, clock, store := newTestMap(t, 2)

	// the whole-key expiry only sticks once the key exists, so the first
	// write creates it and the second arms the deadline
	if err := m.Add("k", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("k", 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	clock.Advance(4)

	// not merely filtered by score, the key itself is gone from the store
	pipe := store.Pipeline()
	pipe.RangeByScore("test:k", 0, zset.ScoreMax)
	raw, err := pipe.Exec()
	if err != nil {
		t.Fatalf("failed to inspect store: %v", err)
	}
	if len(raw[0]) != 0 {
		t.Errorf("expected key to be gone, found %d members", len(raw[0]))
	}
}

func TestAddMany(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	err := m.AddMany([]KeyValues[int64]{
		{Name: "a", Values: []int64{1, 2}},
		{Name: "b", Values: []int64{3}},
		{Name: "c", Values: nil},
	})
	if err != nil {
		t.Fatalf("AddMany failed: %v", err)
	}

	expectInts(t, collect(t, m, "a"), 1, 2)
	expectInts(t, collect(t, m, "b"), 3)
	expectInts(t, collect(t, m, "c"))
}

func TestAddManyWithScores(t *testing.T) {
	m, clock, _ := newTestMap(t, 10)

	now := clock.Now()
	err := m.AddManyWithScores([]KeyScoredValues[int64]{
		{Name: "k", Values: []ScoredValue[int64]{
			{Value: 1, ExpireAt: now + 5},
			{Value: 2, ExpireAt: now + 20},
		}},
	})
	if err != nil {
		t.Fatalf("AddManyWithScores failed: %v", err)
	}

	expectInts(t, collect(t, m, "k"), 1, 2)

	// per-value expiry is honored independently of the engine TTL
	clock.Advance(5)
	expectInts(t, collect(t, m, "k"), 2)

	clock.Advance(15)
	expectInts(t, collect(t, m, "k"))
}

func TestGetMany(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	if err := m.Add("a", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("c", 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// results come back in request order with independent emptiness
	results, err := m.GetMany("a", "b", "c")
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	a, _ := results[0].Collect()
	expectInts(t, a, 1)
	if results[1].Len() != 0 {
		t.Errorf("expected b to be empty, got %d values", results[1].Len())
	}
	c, _ := results[2].Collect()
	expectInts(t, c, 3)
}

func TestDelete(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	if err := m.Add("a", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("b", 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := m.Delete("a", "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	expectInts(t, collect(t, m, "a"))
	expectInts(t, collect(t, m, "b"), 2)
}

func TestEmptyInputsAreNoOps(t *testing.T) {
	m, _, _ := newTestMap(t, 10)

	if err := m.Add("k"); err != nil {
		t.Errorf("Add with no values should be a no-op: %v", err)
	}
	if err := m.AddMany(nil); err != nil {
		t.Errorf("AddMany with no entries should be a no-op: %v", err)
	}
	if err := m.AddManyWithScores(nil); err != nil {
		t.Errorf("AddManyWithScores with no entries should be a no-op: %v", err)
	}
	if err := m.Delete(); err != nil {
		t.Errorf("Delete with no names should be a no-op: %v", err)
	}

	results, err := m.GetMany()
	if err != nil {
		t.Errorf("GetMany with no names should be a no-op: %v", err)
	}
	if results != nil {
		t.Errorf("GetMany with no names should yield nil, got %v", results)
	}
}

func TestPrefixIsolation(t *testing.T) {
	clock := zsettesting.NewManualClock(1_700_000_000)
	store := mstore.NewMemoryStore(&mstore.Options{Clock: clock.Now})
	defer store.Close()

	opts := &Options{TTL: 10, Clock: clock.Now}
	m1 := New[int64](store, "one", cast.NewIntCaster(), opts)
	m2 := New[int64](store, "two", cast.NewIntCaster(), opts)

	// same key name, different prefix, no cross-talk
	if err := m1.Add("k", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectInts(t, collect(t, m1, "k"), 1)
	expectInts(t, collect(t, m2, "k"))
}

func TestCustomCaster(t *testing.T) {
	type event struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	clock := zsettesting.NewManualClock(1_700_000_000)
	store := mstore.NewMemoryStore(&mstore.Options{Clock: clock.Now})
	defer store.Close()

	m := New[event](store, "events", cast.NewJSONCaster[event](), &Options{TTL: 10, Clock: clock.Now})

	if err := m.Add("k", event{ID: 1, Name: "login"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	result, err := m.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	values, err := result.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(values) != 1 || values[0].ID != 1 || values[0].Name != "login" {
		t.Errorf("unexpected values: %+v", values)
	}
}

// --------------------------------------------------------------------------
// Values snapshot behavior
// --------------------------------------------------------------------------

func TestValuesEachEarlyStop(t *testing.T) {
	v := Values[int64]{
		raw:    [][]byte{[]byte("1"), []byte("2"), []byte("3")},
		caster: cast.NewIntCaster(),
	}

	var seen []int64
	err := v.Each(func(value int64) bool {
		seen = append(seen, value)
		return len(seen) < 2
	})
	if err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	expectInts(t, seen, 1, 2)
}

func TestValuesReplay(t *testing.T) {
	v := Values[int64]{
		raw:    [][]byte{[]byte("7")},
		caster: cast.NewIntCaster(),
	}

	// the snapshot is replayable, a second pass yields the same values
	for i := 0; i < 2; i++ {
		values, err := v.Collect()
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		expectInts(t, values, 7)
	}
}

func TestValuesDecodeError(t *testing.T) {
	v := Values[int64]{
		raw:    [][]byte{[]byte("1"), []byte("not-a-number")},
		caster: cast.NewIntCaster(),
	}

	if _, err := v.Collect(); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestCollectEmptyIsNonNil(t *testing.T) {
	v := Values[int64]{caster: cast.NewIntCaster()}

	values, err := v.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if values == nil {
		t.Error("expected empty non-nil slice, got nil")
	}
	if len(values) != 0 {
		t.Errorf("expected empty slice, got %v", values)
	}
}
