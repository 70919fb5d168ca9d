// Package ids issues ULID row keys. ULIDs sort by creation time, which keeps
// index pages warm on append-heavy tables.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var pool = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{
	entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
}

// New returns a fresh identifier. Safe for concurrent use.
func New() string {
	pool.Lock()
	defer pool.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), pool.entropy).String()
}
