// Package idx mints the ULIDs used for sessions, refresh chains and request
// ids.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID for the current time.
func New() ulid.ULID {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t. Ids minted within the same
// millisecond still sort in creation order.
func NewAt(t time.Time) ulid.ULID {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy)
}
