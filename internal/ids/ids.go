package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier used for request ids
// and generated file names.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Accept returns the caller-provided id when it is usable as a request id,
// otherwise a fresh one. Accepted ids are at most 64 printable ASCII characters.
func Accept(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || len(candidate) > 64 {
		return New()
	}
	for _, r := range candidate {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return candidate
}
