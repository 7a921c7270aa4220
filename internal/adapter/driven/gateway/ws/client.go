package ws

import "github.com/voxlink/signaling/internal/core/domain"

// Client is one connected transport session as seen by the hub. Send must
// not block; implementations queue onto a buffered channel drained by a
// per-connection writer.
type Client interface {
	ID() domain.ConnID
	Send(ev domain.Event) error
	Close() error
}
