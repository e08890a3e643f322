package rstore

import (
	"os"
	"testing"
	"time"

	zsettesting "github.com/ValentinKolb/zMap/lib/zset/testing"
)

// Test runs the shared conformance suite against a real Redis server.
// It needs a reachable instance, e.g.:
//
//	ZMAP_TEST_REDIS_ADDR=localhost:6379 go test ./lib/zset/rstore/...
//
// The suite sleeps across expiry boundaries, so this test takes a few
// seconds of wall-clock time.
func Test(t *testing.T) {
	addr := os.Getenv("ZMAP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ZMAP_TEST_REDIS_ADDR not set")
	}

	zsettesting.RunZSetStoreTests(t, "RedisStore", func() zsettesting.Harness {
		store, err := NewRedisStore(Config{Addr: addr})
		if err != nil {
			t.Fatalf("failed to create redis store: %v", err)
		}
		return zsettesting.Harness{
			Store:   store,
			Now:     func() int64 { return time.Now().Unix() },
			Advance: func(seconds int64) { time.Sleep(time.Duration(seconds) * time.Second) },
		}
	})
}
