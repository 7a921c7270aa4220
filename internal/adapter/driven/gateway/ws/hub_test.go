package ws

import (
	"context"
	"errors"
	"testing"

	"github.com/voxlink/signaling/internal/core/domain"
)

type fakeClient struct {
	id     domain.ConnID
	sent   []domain.Event
	fail   bool
	closed bool
}

func (c *fakeClient) ID() domain.ConnID { return c.id }

func (c *fakeClient) Send(ev domain.Event) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.sent = append(c.sent, ev)
	return nil
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func TestUnicast(t *testing.T) {
	h := NewHub()
	a := &fakeClient{id: "a"}
	h.Register(a)

	ev := domain.CallDeclined{By: "b"}
	if err := h.Unicast(context.Background(), "a", ev); err != nil {
		t.Fatalf("unicast: %v", err)
	}
	if len(a.sent) != 1 || a.sent[0] != domain.Event(ev) {
		t.Fatalf("expected the event delivered, got %+v", a.sent)
	}

	// Unknown recipient is not an error, it simply went offline.
	if err := h.Unicast(context.Background(), "ghost", ev); err != nil {
		t.Fatalf("unicast to unknown: %v", err)
	}
}

func TestBroadcastAndExcept(t *testing.T) {
	h := NewHub()
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	c := &fakeClient{id: "c"}
	for _, cl := range []*fakeClient{a, b, c} {
		h.Register(cl)
	}

	ev := domain.UserLeft{ID: "x"}
	if err := h.Broadcast(context.Background(), ev); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	for _, cl := range []*fakeClient{a, b, c} {
		if len(cl.sent) != 1 {
			t.Fatalf("client %s expected 1 event, got %d", cl.id, len(cl.sent))
		}
	}

	if err := h.BroadcastExcept(context.Background(), "b", ev); err != nil {
		t.Fatalf("broadcast except: %v", err)
	}
	if len(b.sent) != 1 {
		t.Fatalf("excluded client must not receive, got %d", len(b.sent))
	}
	if len(a.sent) != 2 || len(c.sent) != 2 {
		t.Fatalf("other clients expected 2 events, got %d and %d", len(a.sent), len(c.sent))
	}
}

func TestFailingClientIsDropped(t *testing.T) {
	h := NewHub()
	good := &fakeClient{id: "good"}
	bad := &fakeClient{id: "bad", fail: true}
	h.Register(good)
	h.Register(bad)

	if err := h.Broadcast(context.Background(), domain.UserLeft{ID: "x"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if !bad.closed {
		t.Fatal("failing client must be closed")
	}

	// After the drop the failing client no longer receives anything.
	bad.fail = false
	if err := h.Broadcast(context.Background(), domain.UserLeft{ID: "y"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(bad.sent) != 0 {
		t.Fatalf("dropped client must not receive, got %d", len(bad.sent))
	}
	if len(good.sent) != 2 {
		t.Fatalf("healthy client expected 2 events, got %d", len(good.sent))
	}
}

func TestUnregisterIgnoresStaleInstance(t *testing.T) {
	h := NewHub()
	old := &fakeClient{id: "a"}
	h.Register(old)

	// A reconnect replaces the entry under the same id; unregistering the
	// stale instance must not evict the new one.
	fresh := &fakeClient{id: "a"}
	h.Register(fresh)
	h.Unregister(old)

	if err := h.Unicast(context.Background(), "a", domain.UserLeft{ID: "x"}); err != nil {
		t.Fatalf("unicast: %v", err)
	}
	if len(fresh.sent) != 1 {
		t.Fatalf("fresh client expected the event, got %d", len(fresh.sent))
	}
}

func TestStopClosesEveryone(t *testing.T) {
	h := NewHub()
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	h.Register(a)
	h.Register(b)

	h.Stop()

	if !a.closed || !b.closed {
		t.Fatal("stop must close all clients")
	}
	if err := h.Unicast(context.Background(), "a", domain.UserLeft{ID: "x"}); err != nil {
		t.Fatalf("unicast after stop: %v", err)
	}
	if len(a.sent) != 0 {
		t.Fatal("no delivery after stop")
	}
}
