// Package idx mints the identifiers used as primary keys throughout the back
// office. IDs are ULIDs, so a listing ordered by id is ordered by creation.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

var ErrInvalid = errors.New("idx: invalid ulid")

// Monotonic entropy keeps ids minted in the same millisecond increasing. The
// reader is not safe for concurrent use.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID stamped with the current time.
func New() ID {
	return NewAt(time.Now())
}

// NewAt returns an ID stamped with t.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String())
}

// Parse accepts the canonical 26 character form only.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalid
	}
	return ID(u.String()), nil
}

func (id ID) String() string { return string(id) }

// Time is the creation instant embedded in id, or the zero time.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
