package memory

import (
	"testing"
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestCreateNeverReusesIDs(t *testing.T) {
	s := NewStore()

	// Same pair, same instant: the id stamp must still differ.
	first := s.Create("a", "b", now)
	second := s.Create("a", "b", now)

	if first.ID == second.ID {
		t.Fatalf("room ids must be unique, both got %s", first.ID)
	}

	// Ids from ended calls stay burned for the process lifetime only if the
	// stamp moves on; a later call at a later instant must differ too.
	s.Delete(first.ID)
	third := s.Create("a", "b", now.Add(time.Second))
	if third.ID == first.ID || third.ID == second.ID {
		t.Fatalf("id reuse after delete: %s", third.ID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := NewStore()
	room := s.Create("a", "b", now)

	deleted, ok := s.Delete(room.ID)
	if !ok || deleted.ID != room.ID {
		t.Fatalf("expected deleted room, got %+v ok=%v", deleted, ok)
	}
	if _, ok := s.Delete(room.ID); ok {
		t.Fatal("second delete must report absent")
	}
	if _, ok := s.Get(room.ID); ok {
		t.Fatal("deleted room must be gone")
	}
}

func TestByParticipant(t *testing.T) {
	s := NewStore()
	room := s.Create("a", "b", now)
	s.Create("x", "y", now)

	for _, id := range []domain.ConnID{"a", "b"} {
		linked := s.ByParticipant(id)
		if len(linked) != 1 || linked[0].ID != room.ID {
			t.Fatalf("expected exactly the ab room for %s, got %+v", id, linked)
		}
	}
	if linked := s.ByParticipant("ghost"); len(linked) != 0 {
		t.Fatalf("unknown participant should match nothing, got %+v", linked)
	}
}

func TestSweepOlderThan(t *testing.T) {
	s := NewStore()
	stale := s.Create("a", "b", now.Add(-3*time.Hour))
	fresh := s.Create("x", "y", now.Add(-time.Hour))

	deleted := s.SweepOlderThan(2*time.Hour, now)
	if len(deleted) != 1 || deleted[0].ID != stale.ID {
		t.Fatalf("expected only the stale room swept, got %+v", deleted)
	}
	if _, ok := s.Get(stale.ID); ok {
		t.Fatal("stale room must be gone")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Fatal("fresh room must survive")
	}

	// Exactly at the cutoff is not "older than".
	edge := s.Create("p", "q", now.Add(-2*time.Hour))
	if deleted := s.SweepOlderThan(2*time.Hour, now); len(deleted) != 0 {
		t.Fatalf("room at the cutoff must survive, swept %+v", deleted)
	}
	if _, ok := s.Get(edge.ID); !ok {
		t.Fatal("cutoff room must still exist")
	}
}
