package runtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"radchat/auth"
	"radchat/contract"
	"radchat/domain"
	"radchat/domain/event"
)

type sessionEntry struct {
	session domain.Session
	sink    contract.EventSink
}

// Registry tracks connected sessions and owns the room lifecycle events
// tied to presence: joined, left and the wake-up of the robot roster
// when the first participant arrives.
type Registry struct {
	mu       sync.RWMutex
	log      *slog.Logger
	verifier auth.IVerifier
	roster   contract.IRoster
	bus      contract.IBus
	sessions map[string]sessionEntry
}

func NewRegistry(log *slog.Logger, verifier auth.IVerifier, roster contract.IRoster, bus contract.IBus) *Registry {
	return &Registry{
		log:      log,
		verifier: verifier,
		roster:   roster,
		bus:      bus,
		sessions: make(map[string]sessionEntry),
	}
}

// Connect verifies the credential, registers a new session and announces
// the arrival. The first connection into an empty room re-enables every
// robot so returning participants never face a silent roster.
func (r *Registry) Connect(credential string, sink contract.EventSink) (domain.Session, error) {
	participant, err := r.verifier.Verify(credential)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{
		ID:          uuid.New().String(),
		Participant: participant,
		ConnectedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	wasEmpty := len(r.sessions) == 0
	r.sessions[session.ID] = sessionEntry{session: session, sink: sink}
	count := len(r.sessions)
	r.mu.Unlock()

	// The arrival is announced first, the wake-up follows it.
	r.bus.Publish(event.Joined{Author: participant.Name, LiveCount: count})
	r.log.Info("Participant connected",
		slog.String("session", session.ID),
		slog.String("name", participant.Name),
		slog.Int("live", count))

	if wasEmpty {
		r.roster.SetAllEnabled(true)
		r.bus.Publish(event.RosterRefresh{})
		r.log.Info("Room woke up, all robots enabled")
	}
	return session, nil
}

// Disconnect removes a session and announces the departure. It never
// fails: a session that failed verification or was already removed
// still produces a left event, with an empty author.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	author := ""
	if ok {
		author = entry.session.Participant.Name
	}
	r.bus.Publish(event.Left{Author: author, LiveCount: count})
	r.log.Info("Participant disconnected",
		slog.String("session", sessionID),
		slog.Int("live", count))
}

func (r *Registry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sinks returns the delivery channel of every live session.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, entry := range r.sessions {
		sinks = append(sinks, entry.sink)
	}
	return sinks
}
