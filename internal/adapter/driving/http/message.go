package http

import (
	"encoding/json"
	"fmt"
)

// Wire protocol: every frame in either direction is a JSON envelope with a
// kebab-case event name and an event-specific data payload. Negotiation
// payloads (offers, answers, candidates) stay opaque end to end.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client-to-server event names.
const (
	evJoin         = "join"
	evCallUser     = "call-user"
	evAnswerCall   = "answer-call"
	evEndCall      = "end-call"
	evDeclineCall  = "decline-call"
	evIceCandidate = "ice-candidate"
)

type missingFieldError struct {
	field string
}

func (e missingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.field)
}

type joinPayload struct {
	Name string `json:"name"`
}

func (p joinPayload) validate() error {
	if p.Name == "" {
		return missingFieldError{"name"}
	}
	return nil
}

type callUserPayload struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	Name       string          `json:"name"`
}

func (p callUserPayload) validate() error {
	if p.UserToCall == "" {
		return missingFieldError{"userToCall"}
	}
	if len(p.SignalData) == 0 {
		return missingFieldError{"signalData"}
	}
	if p.From == "" {
		return missingFieldError{"from"}
	}
	return nil
}

type answerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
	RoomID string          `json:"roomId"`
}

func (p answerCallPayload) validate() error {
	if p.To == "" {
		return missingFieldError{"to"}
	}
	if len(p.Signal) == 0 {
		return missingFieldError{"signal"}
	}
	if p.RoomID == "" {
		return missingFieldError{"roomId"}
	}
	return nil
}

type endCallPayload struct {
	RoomID string `json:"roomId"`
}

func (p endCallPayload) validate() error {
	if p.RoomID == "" {
		return missingFieldError{"roomId"}
	}
	return nil
}

type declineCallPayload struct {
	From string `json:"from"`
}

func (p declineCallPayload) validate() error {
	if p.From == "" {
		return missingFieldError{"from"}
	}
	return nil
}

type iceCandidatePayload struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

func (p iceCandidatePayload) validate() error {
	if p.To == "" {
		return missingFieldError{"to"}
	}
	if len(p.Candidate) == 0 {
		return missingFieldError{"candidate"}
	}
	return nil
}

// decodePayload unmarshals the envelope data into dst and runs its field
// validation. A failure here means the message is dropped.
func decodePayload(data json.RawMessage, dst interface{ validate() error }) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	return dst.validate()
}

// encodeEvent wraps a server event in the wire envelope.
func encodeEvent(ev interface{ Event() string }) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: ev.Event(), Data: data})
}
