package domain

import (
	"github.com/google/uuid"
)

// ConnID identifies one transport connection. It is minted when the
// websocket is accepted and never reused within the process lifetime.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.New().String())
}

func (id ConnID) String() string {
	return string(id)
}
