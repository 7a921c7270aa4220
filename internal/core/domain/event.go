package domain

import "encoding/json"

// Event is a server-to-client notification. The set of implementations is
// closed; the transport adapter maps each variant to its wire name.
type Event interface {
	Event() string
}

// UserStatus is the presence view of a user shared by several events.
type UserStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	InCall bool   `json:"inCall"`
}

// AllUsers lists everyone already online, sent to a client right after join.
type AllUsers []UserStatus

func (AllUsers) Event() string { return "all-users" }

type UserJoined UserStatus

func (UserJoined) Event() string { return "user-joined" }

type UserLeft struct {
	ID string `json:"id"`
}

func (UserLeft) Event() string { return "user-left" }

// UserStatuses is the full presence list, broadcast whenever busy flags
// change.
type UserStatuses []UserStatus

func (UserStatuses) Event() string { return "user-statuses" }

// CallIncoming carries the caller's opaque negotiation payload to the callee.
type CallIncoming struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
	RoomID string          `json:"roomId"`
}

func (CallIncoming) Event() string { return "call-incoming" }

type CallAccepted struct {
	Signal     json.RawMessage `json:"signal"`
	AnsweredBy string          `json:"answeredBy"`
	RoomID     string          `json:"roomId"`
}

func (CallAccepted) Event() string { return "call-accepted" }

type CallUnavailable struct {
	UserToCall string `json:"userToCall"`
	Reason     string `json:"reason"`
}

func (CallUnavailable) Event() string { return "call-unavailable" }

const (
	ReasonOffline      = "User is offline"
	ReasonBusy         = "User is in another call"
	ReasonDisconnected = "User disconnected"
)

type CallDeclined struct {
	By string `json:"by"`
}

func (CallDeclined) Event() string { return "call-declined" }

type CallEnded struct {
	Reason string `json:"reason,omitempty"`
}

func (CallEnded) Event() string { return "call-ended" }

type IceCandidate struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

func (IceCandidate) Event() string { return "ice-candidate" }
