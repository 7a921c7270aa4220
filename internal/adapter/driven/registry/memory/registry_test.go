package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("a", "", now); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, ok := r.Get("a"); ok {
		t.Fatal("failed register must not insert a record")
	}
}

func TestRegisterTwiceKeepsBusyFlag(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("a", "Alice", now); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.SetInCall("a", true)

	user, err := r.Register("a", "Alicia", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if user.Name != "Alicia" {
		t.Fatalf("expected rename, got %q", user.Name)
	}
	if !user.InCall {
		t.Fatal("re-register must not detach the user from a live call")
	}
	if len(r.Snapshot()) != 1 {
		t.Fatalf("expected one record, got %d", len(r.Snapshot()))
	}
}

func TestListOthersExcludesSelfAndKeepsInsertionOrder(t *testing.T) {
	r := NewRegistry()
	for _, u := range []struct {
		id   domain.ConnID
		name string
	}{{"a", "Alice"}, {"b", "Bob"}, {"c", "Carol"}} {
		if _, err := r.Register(u.id, u.name, now); err != nil {
			t.Fatalf("register %s: %v", u.id, err)
		}
	}

	others := r.ListOthers("b")
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(others))
	}
	if others[0].ID != "a" || others[1].ID != "c" {
		t.Fatalf("wrong order: %s, %s", others[0].ID, others[1].ID)
	}
	for _, u := range others {
		if u.ID == "b" {
			t.Fatal("list must never include the excluded id")
		}
	}
}

func TestSetInCallAndTouchIgnoreUnknownIDs(t *testing.T) {
	r := NewRegistry()

	r.SetInCall("ghost", true)
	r.Touch("ghost", now)

	if len(r.Snapshot()) != 0 {
		t.Fatal("mutating an absent record must be a no-op")
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("a", "Alice", now); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, ok := r.Remove("a")
	if !ok || user.Name != "Alice" {
		t.Fatalf("expected removed record, got %+v ok=%v", user, ok)
	}
	if _, ok := r.Remove("a"); ok {
		t.Fatal("second remove must report absent")
	}
	if len(r.Snapshot()) != 0 {
		t.Fatal("snapshot must be empty after remove")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("a", "Alice", now); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, _ := r.Get("a")
	user.InCall = true

	stored, _ := r.Get("a")
	if stored.InCall {
		t.Fatal("mutating a returned record must not affect the registry")
	}
}
