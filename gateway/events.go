package gateway

import (
	"time"

	"radchat/domain/event"
)

// wireEvent is the JSON shape sent over the websocket. One flat struct
// for every kind keeps the client decoder trivial.
type wireEvent struct {
	Kind       string     `json:"kind"`
	Author     string     `json:"author,omitempty"`
	Text       string     `json:"text,omitempty"`
	Robot      bool       `json:"robot,omitempty"`
	LiveCount  int        `json:"live_count,omitempty"`
	At         *time.Time `json:"at,omitempty"`
	Role       string     `json:"role,omitempty"`
	DurationMs int64      `json:"duration_ms,omitempty"`
}

func encodeEvent(e event.RoomEvent) wireEvent {
	out := wireEvent{Kind: e.Kind()}
	switch evt := e.(type) {
	case event.Message:
		out.Author = evt.Author
		out.Text = evt.Text
		out.Robot = evt.Robot
		out.LiveCount = evt.LiveCount
		if !evt.At.IsZero() {
			at := evt.At
			out.At = &at
		}
	case event.Joined:
		out.Author = evt.Author
		out.LiveCount = evt.LiveCount
	case event.Left:
		out.Author = evt.Author
		out.LiveCount = evt.LiveCount
	case event.Typing:
		out.Role = evt.Role
		out.DurationMs = evt.Duration.Milliseconds()
	case event.SystemNotice:
		out.Text = evt.Text
	}
	return out
}
