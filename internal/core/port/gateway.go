package port

import (
	"context"

	"github.com/voxlink/signaling/internal/core/domain"
)

// Gateway delivers server events to connected clients. Unicast to an unknown
// connection is not an error, the client may simply have gone offline.
type Gateway interface {
	Unicast(ctx context.Context, to domain.ConnID, ev domain.Event) error
	Broadcast(ctx context.Context, ev domain.Event) error
	BroadcastExcept(ctx context.Context, except domain.ConnID, ev domain.Event) error
}
