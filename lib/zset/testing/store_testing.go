package testing

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ValentinKolb/zMap/lib/zset"
)

// Harness bundles a store under test with its time controls. Advance moves
// time forward by whole seconds: for the memory store this jumps a manual
// clock, for the Redis store it sleeps for real.
type Harness struct {
	Store   zset.IZSetStore
	Now     func() int64
	Advance func(seconds int64)
}

// StoreFactory is a function that creates a fresh harness for one test
type StoreFactory func() Harness

// RunZSetStoreTests runs a conformance test suite for an IZSetStore
// implementation. Every binding has to pass it with identical results.
func RunZSetStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Add&Range", func(t *testing.T) {
			testAddRange(t, factory())
		})

		t.Run("ScoreReplace", func(t *testing.T) {
			testScoreReplace(t, factory())
		})

		t.Run("RemoveRangeByScore", func(t *testing.T) {
			testRemoveRange(t, factory())
		})

		t.Run("KeyExpiry", func(t *testing.T) {
			testKeyExpiry(t, factory())
		})

		t.Run("ExpireAtBeforeCreate", func(t *testing.T) {
			testExpireAtBeforeCreate(t, factory())
		})

		t.Run("DeleteAll", func(t *testing.T) {
			testDeleteAll(t, factory())
		})

		t.Run("BatchOrder", func(t *testing.T) {
			testBatchOrder(t, factory())
		})

		t.Run("EmptyPipeline", func(t *testing.T) {
			testEmptyPipeline(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func member(value string, score int64) zset.Member {
	return zset.Member{Value: []byte(value), Score: score}
}

// reset removes leftovers of earlier runs, the Redis binding talks to a
// shared server
func reset(t *testing.T, store zset.IZSetStore, keys ...string) {
	t.Helper()
	if err := store.DeleteAll(keys...); err != nil {
		t.Fatalf("failed to reset keys %v: %v", keys, err)
	}
}

// add inserts members for a key in a single batch
func add(t *testing.T, store zset.IZSetStore, key string, members ...zset.Member) {
	t.Helper()
	pipe := store.Pipeline()
	pipe.Add(key, members...)
	if _, err := pipe.Exec(); err != nil {
		t.Fatalf("failed to add members to %s: %v", key, err)
	}
}

// query fetches one score range for a key and returns the raw values as strings
func query(t *testing.T, store zset.IZSetStore, key string, min, max int64) []string {
	t.Helper()
	pipe := store.Pipeline()
	pipe.RangeByScore(key, min, max)
	results, err := pipe.Exec()
	if err != nil {
		t.Fatalf("failed to query %s: %v", key, err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result slice, got %d", len(results))
	}
	values := make([]string, len(results[0]))
	for i, raw := range results[0] {
		values[i] = string(raw)
	}
	return values
}

func expectValues(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(want) == 0 {
		want = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected values %v, got %v", want, got)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testAddRange(t *testing.T, h Harness) {
	defer h.Store.Close()
	reset(t, h.Store, "range-key", "no-such-key")

	now := h.Now()
	add(t, h.Store, "range-key",
		member("b", now+30),
		member("a", now+10),
		member("c", now+10),
	)

	// inclusive bounds, ordered by score then by raw value
	expectValues(t, query(t, h.Store, "range-key", now+10, now+30), "a", "c", "b")

	// lower bound excludes members below it
	expectValues(t, query(t, h.Store, "range-key", now+11, now+30), "b")

	// upper bound excludes members above it
	expectValues(t, query(t, h.Store, "range-key", 0, now+10), "a", "c")

	// open-ended upper bound
	expectValues(t, query(t, h.Store, "range-key", now+10, zset.ScoreMax), "a", "c", "b")

	// a missing key yields an empty result, not an error
	expectValues(t, query(t, h.Store, "no-such-key", 0, zset.ScoreMax))
}

func testScoreReplace(t *testing.T, h Harness) {
	defer h.Store.Close()
	reset(t, h.Store, "replace-key")

	now := h.Now()
	add(t, h.Store, "replace-key", member("v", now+10))
	add(t, h.Store, "replace-key", member("v", now+20))

	// the member is unique, re-adding moved its score
	expectValues(t, query(t, h.Store, "replace-key", 0, zset.ScoreMax), "v")
	expectValues(t, query(t, h.Store, "replace-key", now+15, zset.ScoreMax), "v")
	expectValues(t, query(t, h.Store, "replace-key", 0, now+15))
}

func testRemoveRange(t *testing.T, h Harness) {
	defer h.Store.Close()
	reset(t, h.Store, "remove-key", "no-such-key")

	now := h.Now()
	add(t, h.Store, "remove-key",
		member("a", now+1),
		member("b", now+2),
		member("c", now+3),
	)

	// removal bounds are inclusive on both ends
	pipe := h.Store.Pipeline()
	pipe.RemoveRangeByScore("remove-key", 0, now+2)
	if _, err := pipe.Exec(); err != nil {
		t.Fatalf("failed to remove range: %v", err)
	}

	expectValues(t, query(t, h.Store, "remove-key", 0, zset.ScoreMax), "c")

	// removing from a missing key is a no-op
	pipe = h.Store.Pipeline()
	pipe.RemoveRangeByScore("no-such-key", 0, zset.ScoreMax)
	if _, err := pipe.Exec(); err != nil {
		t.Errorf("remove on missing key should not error: %v", err)
	}
}

func testKeyExpiry(t *testing.T, h Harness) {
	defer h.Store.Close()
	reset(t, h.Store, "expiring-key")

	now := h.Now()
	add(t, h.Store, "expiring-key", member("v", now+100))

	pipe := h.Store.Pipeline()
	pipe.ExpireAt("expiring-key", now+2)
	if _, err := pipe.Exec(); err != nil {
		t.Fatalf("failed to set expiry: %v", err)
	}

	// still there before the deadline
	expectValues(t, query(t, h.Store, "expiring-key", 0, zset.ScoreMax), "v")

	h.Advance(3)

	// the whole key is gone, independent of the member scores
	expectValues(t, query(t, h.Store, "expiring-key", 0, zset.ScoreMax))
}

func testExpireAtBeforeCreate(t *testing.T, h Harness) {
	defer h.Store.Close()

	// expire-at on a key that does not exist yet is a no-op, even if the
	// same batch creates the key right afterwards. The key is then created
	// without a whole-key expiry and only picks one up on a later refresh.
	reset(t, h.Store, "fresh-key")

	now := h.Now()
	pipe := h.Store.Pipeline()
	pipe.ExpireAt("fresh-key", now+1)
	pipe.Add("fresh-key", member("v", now+100))
	if _, err := pipe.Exec(); err != nil {
		t.Fatalf("failed to exec batch: %v", err)
	}

	h.Advance(2)

	expectValues(t, query(t, h.Store, "fresh-key", 0, zset.ScoreMax), "v")
}

func testDeleteAll(t *testing.T, h Harness) {
	defer h.Store.Close()
	reset(t, h.Store, "del-a", "del-b", "del-c", "del-missing")

	now := h.Now()
	add(t, h.Store, "del-a", member("1", now+10))
	add(t, h.Store, "del-b", member("2", now+10))
	add(t, h.Store, "del-c", member("3", now+10))

	if err := h.Store.DeleteAll("del-a", "del-c", "del-missing"); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	expectValues(t, query(t, h.Store, "del-a", 0, zset.ScoreMax))
	expectValues(t, query(t, h.Store, "del-b", 0, zset.ScoreMax), "2")
	expectValues(t, query(t, h.Store, "del-c", 0, zset.ScoreMax))

	if err := h.Store.DeleteAll(); err != nil {
		t.Errorf("DeleteAll with no keys should be a no-op: %v", err)
	}
}

func testBatchOrder(t *testing.T, h Harness) {
	defer h.Store.Close()
	for i := 0; i < 10; i++ {
		reset(t, h.Store, fmt.Sprintf("order-key-%d", i))
	}
	reset(t, h.Store, "order-key-missing")

	now := h.Now()
	numKeys := 10
	for i := 0; i < numKeys; i++ {
		add(t, h.Store, fmt.Sprintf("order-key-%d", i), member(fmt.Sprintf("value-%d", i), now+10))
	}

	// query even keys and a missing one in a single batch, results must
	// come back in submission order with independent emptiness
	pipe := h.Store.Pipeline()
	pipe.RangeByScore("order-key-4", 0, zset.ScoreMax)
	pipe.RangeByScore("order-key-missing", 0, zset.ScoreMax)
	pipe.RangeByScore("order-key-0", 0, zset.ScoreMax)
	pipe.RangeByScore("order-key-8", 0, zset.ScoreMax)

	results, err := pipe.Exec()
	if err != nil {
		t.Fatalf("failed to exec batch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 result slices, got %d", len(results))
	}

	expected := [][]string{{"value-4"}, {}, {"value-0"}, {"value-8"}}
	for i, want := range expected {
		got := make([]string, len(results[i]))
		for j, raw := range results[i] {
			got[j] = string(raw)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("result %d: expected %v, got %v", i, want, got)
		}
	}
}

func testEmptyPipeline(t *testing.T, h Harness) {
	defer h.Store.Close()

	results, err := h.Store.Pipeline().Exec()
	if err != nil {
		t.Errorf("empty pipeline should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty pipeline should yield no results, got %d", len(results))
	}
}
