// Package event defines the closed set of room events carried by the
// broadcast bus. The gateway serializes them at the transport boundary;
// nothing inside the engine depends on their wire shape.
package event

import "time"

type RoomEvent interface {
	Kind() string
}

// Message is a chat line, human or automated.
type Message struct {
	Author    string
	Text      string
	Robot     bool
	LiveCount int
	At        time.Time
}

func (Message) Kind() string { return "message" }

// Joined is broadcast after a session registers successfully.
type Joined struct {
	Author    string
	LiveCount int
}

func (Joined) Kind() string { return "joined" }

// Left is broadcast on disconnect, including for sessions that never
// completed verification (author is empty in that case).
type Left struct {
	Author    string
	LiveCount int
}

func (Left) Kind() string { return "left" }

// RosterRefresh tells clients to re-fetch the robochatter roster.
type RosterRefresh struct{}

func (RosterRefresh) Kind() string { return "roster_refresh" }

// Typing is a transient "a robot is composing" indicator.
type Typing struct {
	Role     string
	Duration time.Duration
}

func (Typing) Kind() string { return "typing" }

// SystemNotice is user-facing text not attributed to any participant.
type SystemNotice struct {
	Text string
}

func (SystemNotice) Kind() string { return "system_notice" }
