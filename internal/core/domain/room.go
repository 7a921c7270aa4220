package domain

import (
	"fmt"
	"time"
)

// Room links exactly two participants for the lifetime of one call attempt,
// from the moment the caller rings until the call ends or is torn down.
type Room struct {
	ID           string
	Participants [2]ConnID
	CreatedAt    time.Time
}

// RoomIDAt composes a room id from the two participants and the creation
// instant. The millisecond stamp keeps ids distinct across repeated call
// attempts between the same pair.
func RoomIDAt(caller, callee ConnID, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", caller, callee, at.UnixMilli())
}

func (r Room) Has(id ConnID) bool {
	return r.Participants[0] == id || r.Participants[1] == id
}

// Other returns the participant that is not id.
func (r Room) Other(id ConnID) (ConnID, bool) {
	switch id {
	case r.Participants[0]:
		return r.Participants[1], true
	case r.Participants[1]:
		return r.Participants[0], true
	}
	return "", false
}

func (r Room) OlderThan(maxAge time.Duration, now time.Time) bool {
	return now.Sub(r.CreatedAt) > maxAge
}
