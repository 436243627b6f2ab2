package notebook

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewCellID returns a fresh cell identifier. ULIDs from a monotonic
// entropy source are unique within a run, which is stronger than the
// nbformat requirement of a low collision probability.
func NewCellID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
