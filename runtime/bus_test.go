package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"radchat/contract"
	"radchat/domain"
	"radchat/domain/event"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.RoomEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.RoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) snapshot() []event.RoomEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.RoomEvent, len(s.events))
	copy(out, s.events)
	return out
}

type staticRegistry struct {
	sinks []contract.EventSink
}

func (r *staticRegistry) Sinks() []contract.EventSink { return r.sinks }
func (r *staticRegistry) LiveCount() int              { return len(r.sinks) }
func (r *staticRegistry) Disconnect(string)           {}
func (r *staticRegistry) Connect(string, contract.EventSink) (domain.Session, error) {
	panic("not used")
}

func TestFanoutPreservesPublishOrder(t *testing.T) {
	req := require.New(t)
	bus := NewBus(slog.Default(), 64, time.Second)
	sink := &recordingSink{}
	bus.Add(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bus.Fanout(&staticRegistry{}).Run(ctx) }()

	bus.Publish(event.Message{Author: "Alice", Text: "first"})
	bus.Publish(event.Message{Author: "Alice", Text: "second"})
	bus.Publish(event.SystemNotice{Text: "third"})

	req.Eventually(func() bool {
		return len(sink.snapshot()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	events := sink.snapshot()
	req.Equal("first", events[0].(event.Message).Text)
	req.Equal("second", events[1].(event.Message).Text)
	req.Equal("third", events[2].(event.SystemNotice).Text)
}

func TestFanoutReachesSessionSinks(t *testing.T) {
	req := require.New(t)
	bus := NewBus(slog.Default(), 64, time.Second)
	session := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bus.Fanout(&staticRegistry{sinks: []contract.EventSink{session}}).Run(ctx) }()

	bus.Publish(event.Joined{Author: "Alice", LiveCount: 1})

	req.Eventually(func() bool {
		return len(session.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishDropsWhenFull(t *testing.T) {
	// No fanout running, buffer of one. The second publish must return
	// immediately instead of blocking.
	bus := NewBus(slog.Default(), 1, time.Second)

	done := make(chan struct{})
	go func() {
		bus.Publish(event.SystemNotice{Text: "kept"})
		bus.Publish(event.SystemNotice{Text: "dropped"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}
