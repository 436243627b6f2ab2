// Package ops implements the operations behind the CLI commands and MCP
// tools: the batch sanitize pass, HTML preview, and run history.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRunID mints an identifier for a recorded run.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
