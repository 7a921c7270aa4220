package port

import (
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

// UserRegistry is the single source of truth for who is online and who is
// busy. All returned records are copies; mutation goes through the registry.
type UserRegistry interface {
	// Register inserts a presence record for id. Registering an id that is
	// already present updates the name and activity timestamp and keeps the
	// busy flag, so a rename cannot detach a user from a live call.
	Register(id domain.ConnID, name string, now time.Time) (domain.User, error)

	Get(id domain.ConnID) (domain.User, bool)

	// ListOthers returns every registered user except exclude, in insertion
	// order.
	ListOthers(exclude domain.ConnID) []domain.User

	// SetInCall is a no-op if id is not registered.
	SetInCall(id domain.ConnID, inCall bool)

	// Touch refreshes the informational activity timestamp.
	Touch(id domain.ConnID, at time.Time)

	Remove(id domain.ConnID) (domain.User, bool)

	// Snapshot returns every registered user in insertion order.
	Snapshot() []domain.User
}
