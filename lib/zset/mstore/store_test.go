package mstore

import (
	"testing"

	zsettesting "github.com/ValentinKolb/zMap/lib/zset/testing"
)

func Test(t *testing.T) {
	zsettesting.RunZSetStoreTests(t, "MemoryStore", func() zsettesting.Harness {
		clock := zsettesting.NewManualClock(1_700_000_000)
		return zsettesting.Harness{
			Store:   NewMemoryStore(&Options{Clock: clock.Now}),
			Now:     clock.Now,
			Advance: clock.Advance,
		}
	})
}
