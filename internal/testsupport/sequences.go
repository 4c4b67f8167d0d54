package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"
)

// seq numbers fixture names within a process. Seeded from the clock so
// names stay unique across test runs against a shared database.
var seq atomic.Uint64

func init() {
	seq.Store(uint64(time.Now().UnixNano() % 1_000_000))
}

// NextSequence returns the next unique sequence number.
func NextSequence() uint64 {
	return seq.Add(1)
}

// UniqueName appends a sequence number to prefix.
// Example: UniqueName("test_post") -> "test_post_123457"
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, NextSequence())
}

// UniqueSubreddit returns a subreddit name no other fixture shares, so
// tests can scope ClickHouse cleanup to their own rows.
func UniqueSubreddit() string {
	return UniqueName("test_sub")
}
