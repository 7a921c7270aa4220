// Package memory holds the in-process room store.
package memory

import (
	"sync"
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

// Store implements port.RoomStore.
type Store struct {
	mu    sync.Mutex
	rooms map[string]domain.Room
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]domain.Room),
	}
}

func (s *Store) Create(caller, callee domain.ConnID, now time.Time) domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The millisecond stamp in the id can collide when the same pair rings
	// twice within one tick; bump the stamp until the id is fresh.
	at := now
	id := domain.RoomIDAt(caller, callee, at)
	for {
		if _, taken := s.rooms[id]; !taken {
			break
		}
		at = at.Add(time.Millisecond)
		id = domain.RoomIDAt(caller, callee, at)
	}

	room := domain.Room{
		ID:           id,
		Participants: [2]domain.ConnID{caller, callee},
		CreatedAt:    now,
	}
	s.rooms[id] = room
	return room
}

func (s *Store) Get(id string) (domain.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	return room, ok
}

func (s *Store) Delete(id string) (domain.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	return room, ok
}

func (s *Store) ByParticipant(id domain.ConnID) []domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Room
	for _, room := range s.rooms {
		if room.Has(id) {
			out = append(out, room)
		}
	}
	return out
}

func (s *Store) SweepOlderThan(maxAge time.Duration, now time.Time) []domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []domain.Room
	for id, room := range s.rooms {
		if room.OlderThan(maxAge, now) {
			deleted = append(deleted, room)
			delete(s.rooms, id)
		}
	}
	return deleted
}
