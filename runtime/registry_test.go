package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"radchat/domain"
	"radchat/domain/event"
	"radchat/errors"
	"radchat/repositories"
)

type verifierStub struct {
	participant domain.Participant
	err         error
}

func (v verifierStub) Verify(string) (domain.Participant, error) {
	return v.participant, v.err
}

// capturingBus records published events synchronously, no fanout worker
// involved.
type capturingBus struct {
	mu     sync.Mutex
	events []event.RoomEvent
}

func (b *capturingBus) Publish(e event.RoomEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *capturingBus) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Kind()
	}
	return out
}

type nullSink struct{}

func (nullSink) Consume(context.Context, event.RoomEvent) error { return nil }

func newRegistryFixture(verifier verifierStub) (*Registry, *repositories.RobotRoster, *capturingBus) {
	roster := repositories.NewRobotRoster(repositories.DefaultRoster())
	bus := &capturingBus{}
	return NewRegistry(slog.Default(), verifier, roster, bus), roster, bus
}

func TestConnectAnnouncesArrival(t *testing.T) {
	req := require.New(t)
	registry, _, bus := newRegistryFixture(verifierStub{
		participant: domain.Participant{ID: "u-1", Name: "Alice"},
	})

	session, err := registry.Connect("valid-token", nullSink{})
	req.NoError(err)
	req.NotEmpty(session.ID)
	req.Equal("Alice", session.Participant.Name)
	req.Equal(1, registry.LiveCount())
	req.Len(registry.Sinks(), 1)

	// The join announcement precedes the empty room wake-up.
	req.Equal([]string{"joined", "roster_refresh"}, bus.kinds())
}

func TestConnectRejectsBadCredential(t *testing.T) {
	req := require.New(t)
	registry, _, bus := newRegistryFixture(verifierStub{err: errors.ErrMalformedCredential})

	_, err := registry.Connect("garbage", nullSink{})
	req.ErrorIs(err, errors.ErrMalformedCredential)
	req.Zero(registry.LiveCount())
	req.Empty(bus.kinds())
}

func TestFirstConnectionWakesAllRobots(t *testing.T) {
	req := require.New(t)
	registry, roster, _ := newRegistryFixture(verifierStub{
		participant: domain.Participant{ID: "u-1", Name: "Alice"},
	})
	req.Empty(roster.Enabled())

	_, err := registry.Connect("valid-token", nullSink{})
	req.NoError(err)
	req.Len(roster.Enabled(), len(roster.List()))
}

func TestSecondConnectionLeavesRosterAlone(t *testing.T) {
	req := require.New(t)
	registry, roster, _ := newRegistryFixture(verifierStub{
		participant: domain.Participant{ID: "u-1", Name: "Alice"},
	})

	_, err := registry.Connect("valid-token", nullSink{})
	req.NoError(err)

	// Someone put one robot back to sleep.
	_, err = roster.Toggle(1)
	req.NoError(err)

	_, err = registry.Connect("valid-token", nullSink{})
	req.NoError(err)
	req.Len(roster.Enabled(), len(roster.List())-1)
	req.Equal(2, registry.LiveCount())
}

func TestDisconnectAnnouncesDeparture(t *testing.T) {
	req := require.New(t)
	registry, _, bus := newRegistryFixture(verifierStub{
		participant: domain.Participant{ID: "u-1", Name: "Alice"},
	})

	session, err := registry.Connect("valid-token", nullSink{})
	req.NoError(err)

	registry.Disconnect(session.ID)
	req.Zero(registry.LiveCount())
	req.Equal([]string{"joined", "roster_refresh", "left"}, bus.kinds())

	// Disconnect never fails, even for a session already removed; the
	// live count stays at zero and the departure is still announced.
	registry.Disconnect(session.ID)
	req.Zero(registry.LiveCount())
	req.Equal([]string{"joined", "roster_refresh", "left", "left"}, bus.kinds())

	bus.mu.Lock()
	ghost := bus.events[3].(event.Left)
	bus.mu.Unlock()
	req.Empty(ghost.Author)
}
