// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a verified human identity resolved from a credential.
// It is never mutated by the engine.
type Participant struct {
	ID    string
	Email string
	Name  string
}

// Session is one live connected client tied to a verified participant.
// Owned exclusively by the session registry; its lifetime is bounded by
// the transport connection.
type Session struct {
	ID          string
	Participant Participant
	ConnectedAt time.Time
}
