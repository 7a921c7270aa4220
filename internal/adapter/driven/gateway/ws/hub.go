package ws

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voxlink/signaling/internal/core/domain"
)

// Hub implements port.Gateway over the set of live websocket clients. It
// only reads registry-independent connection state; presence decisions
// belong to the coordinator.
type Hub struct {
	mu      sync.RWMutex
	clients map[domain.ConnID]Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[domain.ConnID]Client),
	}
}

func (h *Hub) Register(c Client) {
	h.mu.Lock()
	h.clients[c.ID()] = c
	h.mu.Unlock()
	log.Info().Str("conn_id", c.ID().String()).Msg("client registered")
}

func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.ID()]; ok && current == c {
		delete(h.clients, c.ID())
	}
	h.mu.Unlock()
	log.Info().Str("conn_id", c.ID().String()).Msg("client unregistered")
}

func (h *Hub) Unicast(ctx context.Context, to domain.ConnID, ev domain.Event) error {
	h.mu.RLock()
	client, ok := h.clients[to]
	h.mu.RUnlock()

	if !ok {
		// Recipient went offline between snapshot and delivery.
		return nil
	}
	if err := client.Send(ev); err != nil {
		h.drop(client)
		return err
	}
	return nil
}

func (h *Hub) Broadcast(ctx context.Context, ev domain.Event) error {
	return h.fanOut(ev, "")
}

func (h *Hub) BroadcastExcept(ctx context.Context, except domain.ConnID, ev domain.Event) error {
	return h.fanOut(ev, except)
}

func (h *Hub) fanOut(ev domain.Event, except domain.ConnID) error {
	h.mu.RLock()
	targets := make([]Client, 0, len(h.clients))
	for id, client := range h.clients {
		if id == except {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.Send(ev); err != nil {
			log.Error().Err(err).
				Str("conn_id", client.ID().String()).
				Str("event", ev.Event()).
				Msg("dropping unresponsive client")
			h.drop(client)
		}
	}
	return nil
}

// drop removes a client whose send path failed and closes its connection,
// which drives the normal disconnect teardown on its read loop.
func (h *Hub) drop(c Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.ID()]; ok && current == c {
		delete(h.clients, c.ID())
	}
	h.mu.Unlock()
	c.Close()
}

func (h *Hub) Stop() {
	h.mu.Lock()
	clients := make([]Client, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
