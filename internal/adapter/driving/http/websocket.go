package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voxlink/signaling/internal/core/domain"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Enough for WebRTC SDP payloads.
	maxMessageSize = 64 * 1024

	sendBufferSize = 32
)

var (
	errSendBufferFull = errors.New("client send buffer full")
	errClientClosed   = errors.New("client connection closed")
)

// wsClient adapts one websocket connection to the hub's Client interface.
// All writes to the connection happen on the write pump goroutine. The send
// channel is never closed; Close signals shutdown through done so concurrent
// senders cannot hit a closed channel.
type wsClient struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan domain.Event
	done chan struct{}

	closeOnce sync.Once
}

func (c *wsClient) ID() domain.ConnID {
	return c.id
}

func (c *wsClient) Send(ev domain.Event) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- ev:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		return errSendBufferFull
	}
}

func (c *wsClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. One writer per connection.
func (c *wsClient) writePump(l zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			frame, err := encodeEvent(ev)
			if err != nil {
				l.Error().Err(err).Str("event", ev.Event()).Msg("failed to encode event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(h.allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// ServeWS upgrades the connection and runs its read loop. Each connection
// gets a fresh connection id; the browser learns it through the events it
// receives (call-incoming carries the peer's id, and so on).
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{
		id:   domain.NewConnID(),
		conn: conn,
		send: make(chan domain.Event, sendBufferSize),
		done: make(chan struct{}),
	}

	l := log.With().Str("conn_id", client.id.String()).Logger()
	l.Info().Msg("client connected")

	h.Hub.Register(client)
	go client.writePump(l)

	defer func() {
		l.Info().Msg("client disconnected")
		h.Hub.Unregister(client)
		h.Coordinator.Disconnect(r.Context(), client.id)
		client.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("unexpected close")
			}
			break
		}
		h.dispatch(r, l, client.id, env)
	}
}

// dispatch routes one inbound envelope into the coordinator. A malformed
// message is dropped with a warning; one client's garbage must never affect
// the others.
func (h *Handler) dispatch(r *http.Request, l zerolog.Logger, id domain.ConnID, env envelope) {
	ctx := r.Context()

	warn := func(err error) {
		l.Warn().Err(err).Str("event", env.Event).Msg("dropping malformed message")
	}

	switch env.Event {
	case evJoin:
		var p joinPayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		if err := h.Coordinator.Join(ctx, id, p.Name); err != nil {
			warn(err)
		}

	case evCallUser:
		var p callUserPayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		// The caller identity is the authenticated connection, not the
		// client-supplied from field.
		if err := h.Coordinator.CallUser(ctx, id, domain.ConnID(p.UserToCall), p.Name, p.SignalData); err != nil {
			warn(err)
		}

	case evAnswerCall:
		var p answerCallPayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		if err := h.Coordinator.AnswerCall(ctx, id, domain.ConnID(p.To), p.RoomID, p.Signal); err != nil {
			warn(err)
		}

	case evEndCall:
		var p endCallPayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		if err := h.Coordinator.EndCall(ctx, id, p.RoomID); err != nil {
			warn(err)
		}

	case evDeclineCall:
		var p declineCallPayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		if err := h.Coordinator.DeclineCall(ctx, id, domain.ConnID(p.From)); err != nil {
			warn(err)
		}

	case evIceCandidate:
		var p iceCandidatePayload
		if err := decodePayload(env.Data, &p); err != nil {
			warn(err)
			return
		}
		if err := h.Coordinator.RelayCandidate(ctx, id, domain.ConnID(p.To), p.Candidate); err != nil {
			warn(err)
		}

	default:
		l.Warn().Str("event", env.Event).Msg("unknown event")
	}
}
