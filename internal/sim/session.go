package sim

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Session identifies one simulation instance.
type Session struct {
	ID   string
	Seed int64
}

// NewSession creates a session with a fresh id. A zero seed is derived from
// the id, so every session's field motion differs but stays reproducible
// from the printed seed.
func NewSession(seed int64) Session {
	id := uuid.New()
	if seed == 0 {
		seed = SeedFromID(id)
	}
	return Session{ID: id.String(), Seed: seed}
}

// SeedFromID folds the first eight bytes of id into a non-zero seed.
func SeedFromID(id uuid.UUID) int64 {
	s := int64(binary.BigEndian.Uint64(id[:8]) >> 1)
	if s == 0 {
		s = 1
	}
	return s
}
