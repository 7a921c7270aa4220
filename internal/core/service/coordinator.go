package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxlink/signaling/internal/core/domain"
	"github.com/voxlink/signaling/internal/core/port"
)

// Coordinator is the call state machine. It owns the only serialization
// point for the user registry and the room store: every mutation happens
// under mu, and outbound notifications are collected under the lock but
// delivered only after it is released.
type Coordinator struct {
	mu      sync.Mutex
	users   port.UserRegistry
	rooms   port.RoomStore
	gateway port.Gateway
	log     zerolog.Logger
	now     func() time.Time
}

func NewCoordinator(users port.UserRegistry, rooms port.RoomStore, gateway port.Gateway, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		users:   users,
		rooms:   rooms,
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

// send is one queued outbound notification. An empty to with an empty except
// means broadcast to everyone.
type send struct {
	to     domain.ConnID
	except domain.ConnID
	ev     domain.Event
}

type outbox struct {
	sends []send
}

func (o *outbox) unicast(to domain.ConnID, ev domain.Event) {
	o.sends = append(o.sends, send{to: to, ev: ev})
}

func (o *outbox) broadcast(ev domain.Event) {
	o.sends = append(o.sends, send{ev: ev})
}

func (o *outbox) broadcastExcept(except domain.ConnID, ev domain.Event) {
	o.sends = append(o.sends, send{except: except, ev: ev})
}

func (c *Coordinator) flush(ctx context.Context, out *outbox) {
	for _, s := range out.sends {
		var err error
		switch {
		case s.to != "":
			err = c.gateway.Unicast(ctx, s.to, s.ev)
		case s.except != "":
			err = c.gateway.BroadcastExcept(ctx, s.except, s.ev)
		default:
			err = c.gateway.Broadcast(ctx, s.ev)
		}
		if err != nil {
			c.log.Warn().Err(err).Str("event", s.ev.Event()).Msg("failed to deliver notification")
		}
	}
}

// statusesLocked snapshots the presence list. Callers must hold mu.
func (c *Coordinator) statusesLocked() domain.UserStatuses {
	users := c.users.Snapshot()
	statuses := make(domain.UserStatuses, 0, len(users))
	for i := range users {
		statuses = append(statuses, users[i].Status())
	}
	return statuses
}

// Join registers a new presence record, tells the joiner who is already
// online and announces the joiner to everyone else.
func (c *Coordinator) Join(ctx context.Context, id domain.ConnID, name string) error {
	c.mu.Lock()
	user, err := c.users.Register(id, name, c.now())
	if err != nil {
		c.mu.Unlock()
		return err
	}
	others := c.users.ListOthers(id)
	c.mu.Unlock()

	existing := make(domain.AllUsers, 0, len(others))
	for i := range others {
		existing = append(existing, others[i].Status())
	}

	c.log.Info().Str("conn_id", id.String()).Str("name", name).Msg("user joined")

	var out outbox
	out.unicast(id, existing)
	out.broadcastExcept(id, domain.UserJoined(user.Status()))
	c.flush(ctx, &out)
	return nil
}

// CallUser rings target on behalf of caller. The room is created at call
// time, before the callee answers, so both sides read as busy while ringing.
// That closes the race where two callers grab the same free target between
// ring and answer.
func (c *Coordinator) CallUser(ctx context.Context, caller, target domain.ConnID, callerName string, signal json.RawMessage) error {
	if caller == target {
		return domain.ErrUserNotFound
	}

	c.mu.Lock()
	c.users.Touch(caller, c.now())

	if _, ok := c.users.Get(caller); !ok {
		c.mu.Unlock()
		return domain.ErrUserNotFound
	}

	callee, ok := c.users.Get(target)
	if !ok || callee.InCall {
		c.mu.Unlock()
		reason := domain.ReasonOffline
		if ok {
			reason = domain.ReasonBusy
		}
		c.log.Info().
			Str("caller", caller.String()).
			Str("target", target.String()).
			Str("reason", reason).
			Msg("call rejected")

		var out outbox
		out.unicast(caller, domain.CallUnavailable{UserToCall: target.String(), Reason: reason})
		c.flush(ctx, &out)
		return nil
	}

	room := c.rooms.Create(caller, target, c.now())
	c.users.SetInCall(caller, true)
	c.users.SetInCall(target, true)
	statuses := c.statusesLocked()
	c.mu.Unlock()

	c.log.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Str("room_id", room.ID).
		Msg("call started")

	var out outbox
	out.unicast(target, domain.CallIncoming{
		Signal: signal,
		From:   caller.String(),
		Name:   callerName,
		RoomID: room.ID,
	})
	out.broadcast(statuses)
	c.flush(ctx, &out)
	return nil
}

// AnswerCall relays the callee's answer payload back to the caller. The
// answer references a room, so an answer for a room that no longer exists
// (already ended, swept, or never created) is dropped.
func (c *Coordinator) AnswerCall(ctx context.Context, answerer, to domain.ConnID, roomID string, signal json.RawMessage) error {
	c.mu.Lock()
	c.users.Touch(answerer, c.now())
	_, ok := c.rooms.Get(roomID)
	c.mu.Unlock()

	if !ok {
		c.log.Warn().Str("conn_id", answerer.String()).Str("room_id", roomID).Msg("answer for unknown room dropped")
		return nil
	}

	c.log.Info().Str("conn_id", answerer.String()).Str("room_id", roomID).Msg("call answered")

	var out outbox
	out.unicast(to, domain.CallAccepted{
		Signal:     signal,
		AnsweredBy: answerer.String(),
		RoomID:     roomID,
	})
	c.flush(ctx, &out)
	return nil
}

// EndCall tears down the room, frees both participants and notifies the
// other side. Ending a room that no longer exists is a no-op; concurrent end
// requests from both participants are expected.
func (c *Coordinator) EndCall(ctx context.Context, ender domain.ConnID, roomID string) error {
	c.mu.Lock()
	c.users.Touch(ender, c.now())
	room, ok := c.rooms.Delete(roomID)
	if !ok {
		c.mu.Unlock()
		c.log.Debug().Str("conn_id", ender.String()).Str("room_id", roomID).Msg("end for unknown room ignored")
		return nil
	}
	for _, p := range room.Participants {
		c.users.SetInCall(p, false)
	}
	statuses := c.statusesLocked()
	c.mu.Unlock()

	c.log.Info().Str("conn_id", ender.String()).Str("room_id", roomID).Msg("call ended")

	var out outbox
	for _, p := range room.Participants {
		if p != ender {
			out.unicast(p, domain.CallEnded{})
		}
	}
	out.broadcast(statuses)
	c.flush(ctx, &out)
	return nil
}

// DeclineCall tells caller that decliner rejected the ring. The ringing call
// left a room linking the two, so the decline also tears that room down and
// returns both sides to available.
func (c *Coordinator) DeclineCall(ctx context.Context, decliner, caller domain.ConnID) error {
	c.mu.Lock()
	c.users.Touch(decliner, c.now())

	freed := false
	for _, room := range c.rooms.ByParticipant(decliner) {
		if !room.Has(caller) {
			continue
		}
		c.rooms.Delete(room.ID)
		for _, p := range room.Participants {
			c.users.SetInCall(p, false)
		}
		freed = true
	}
	var statuses domain.UserStatuses
	if freed {
		statuses = c.statusesLocked()
	}
	c.mu.Unlock()

	c.log.Info().Str("conn_id", decliner.String()).Str("caller", caller.String()).Msg("call declined")

	var out outbox
	out.unicast(caller, domain.CallDeclined{By: decliner.String()})
	if freed {
		out.broadcast(statuses)
	}
	c.flush(ctx, &out)
	return nil
}

// RelayCandidate forwards an opaque ICE candidate, tagged with the sender's
// connection id. No state changes.
func (c *Coordinator) RelayCandidate(ctx context.Context, from, to domain.ConnID, candidate json.RawMessage) error {
	c.mu.Lock()
	c.users.Touch(from, c.now())
	c.mu.Unlock()

	var out outbox
	out.unicast(to, domain.IceCandidate{From: from.String(), Candidate: candidate})
	c.flush(ctx, &out)
	return nil
}

// Disconnect removes the user and tears down any call they were part of.
// Each affected peer receives exactly one call-ended notification.
func (c *Coordinator) Disconnect(ctx context.Context, id domain.ConnID) {
	c.mu.Lock()
	var peers []domain.ConnID
	for _, room := range c.rooms.ByParticipant(id) {
		if other, ok := room.Other(id); ok {
			c.users.SetInCall(other, false)
			peers = append(peers, other)
		}
		c.rooms.Delete(room.ID)
	}
	_, existed := c.users.Remove(id)
	statuses := c.statusesLocked()
	c.mu.Unlock()

	c.log.Info().Str("conn_id", id.String()).Bool("was_registered", existed).Msg("user disconnected")

	var out outbox
	for _, peer := range peers {
		out.unicast(peer, domain.CallEnded{Reason: domain.ReasonDisconnected})
	}
	if existed {
		out.broadcastExcept(id, domain.UserLeft{ID: id.String()})
	}
	out.broadcast(statuses)
	c.flush(ctx, &out)
}

// SweepStaleRooms deletes every room older than maxAge, frees its
// participants and broadcasts the refreshed presence list. This is a safety
// net against leaked rooms, not a user-facing timeout, so no call-ended is
// sent for swept rooms.
func (c *Coordinator) SweepStaleRooms(ctx context.Context, maxAge time.Duration) {
	c.mu.Lock()
	deleted := c.rooms.SweepOlderThan(maxAge, c.now())
	for _, room := range deleted {
		for _, p := range room.Participants {
			c.users.SetInCall(p, false)
		}
	}
	statuses := c.statusesLocked()
	c.mu.Unlock()

	for _, room := range deleted {
		c.log.Info().Str("room_id", room.ID).Time("created_at", room.CreatedAt).Msg("swept stale room")
	}

	var out outbox
	out.broadcast(statuses)
	c.flush(ctx, &out)
}

// RunSweeper runs the periodic stale-room sweep until ctx is canceled.
func (c *Coordinator) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("stopping room sweeper")
			return
		case <-ticker.C:
			c.SweepStaleRooms(ctx, maxAge)
		}
	}
}
