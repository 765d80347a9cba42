package sink

import (
	"context"

	"radchat/domain/event"
)

// SessionSink buffers room events for one connected participant. The
// websocket handler owns the channel and drains it into the connection.
type SessionSink struct {
	Events chan event.RoomEvent
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{Events: make(chan event.RoomEvent, bufferSize)}
}

// Consume is called by the fanout worker. A full buffer drops the event
// rather than stalling delivery to every other participant.
func (s *SessionSink) Consume(ctx context.Context, e event.RoomEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
