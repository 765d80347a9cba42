// Package runtime wires the room together: session tracking, event
// broadcast and the automated turn machinery. It carries no persistence
// or transport details of its own.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"radchat/contract"
	"radchat/domain/event"
)

// Bus decouples event producers from delivery. Publish never blocks;
// a single fanout worker drains the channel so observers receive events
// in the order they were published.
type Bus struct {
	mu             sync.RWMutex
	log            *slog.Logger
	events         chan event.RoomEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewBus(log *slog.Logger, bufferSize int, sinkTimeout time.Duration) *Bus {
	return &Bus{
		log:         log,
		events:      make(chan event.RoomEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks that receive every event regardless of sessions,
// such as the timeline projection or metrics.
func (b *Bus) Add(sinks ...contract.EventSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.permanentSinks = append(b.permanentSinks, sinks...)
}

// Publish enqueues an event for delivery. A full buffer drops the event
// with a warning rather than stalling the caller.
func (b *Bus) Publish(e event.RoomEvent) {
	select {
	case b.events <- e:
	default:
		b.log.Warn("Event channel full, dropping event", slog.String("kind", e.Kind()))
	}
}

// Fanout returns the worker that delivers published events to the
// permanent sinks and to every connected session.
func (b *Bus) Fanout(registry contract.IRegistry) contract.Worker {
	return &FanoutWorker{bus: b, registry: registry}
}

type FanoutWorker struct {
	bus      *Bus
	registry contract.IRegistry
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.bus.events:
			w.deliver(ctx, evt)
		case <-ctx.Done():
			w.bus.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// deliver pushes one event to every sink. Each sink gets its own
// timeout so a stuck consumer cannot hold the whole room hostage.
func (w *FanoutWorker) deliver(ctx context.Context, evt event.RoomEvent) {
	w.bus.mu.RLock()
	sinks := make([]contract.EventSink, len(w.bus.permanentSinks))
	copy(sinks, w.bus.permanentSinks)
	w.bus.mu.RUnlock()

	sinks = append(sinks, w.registry.Sinks()...)

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.bus.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.bus.log.Debug("Sink rejected event", slog.String("kind", evt.Kind()), slog.Any("error", err))
		}
		cancel()
	}
}
