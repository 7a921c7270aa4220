package port

import (
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

// RoomStore holds the record of every in-progress call. Preconditions
// (target online and free) are the coordinator's job; Create never fails.
type RoomStore interface {
	Create(caller, callee domain.ConnID, now time.Time) domain.Room

	Get(id string) (domain.Room, bool)

	Delete(id string) (domain.Room, bool)

	// ByParticipant returns every room containing id. Expected cardinality
	// is zero or one; more than one means an invariant was broken upstream.
	ByParticipant(id domain.ConnID) []domain.Room

	// SweepOlderThan removes and returns every room strictly older than
	// maxAge at now.
	SweepOlderThan(maxAge time.Duration, now time.Time) []domain.Room
}
