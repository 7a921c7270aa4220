package domain

import (
	"time"
)

// User is the presence record for one connected client. Records are owned
// exclusively by the registry; the coordinator reads and mutates them only
// through registry operations.
type User struct {
	ID     ConnID
	Name   string
	InCall bool

	// LastActivity is informational only, it is not used for liveness
	// decisions.
	LastActivity time.Time
}

func NewUser(id ConnID, name string, now time.Time) (*User, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &User{
		ID:           id,
		Name:         name,
		LastActivity: now,
	}, nil
}

func (u *User) Status() UserStatus {
	return UserStatus{
		ID:     u.ID.String(),
		Name:   u.Name,
		InCall: u.InCall,
	}
}
