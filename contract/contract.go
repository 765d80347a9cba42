//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"radchat/domain"
	"radchat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives room events from the broadcast bus. A sink must
// never block the fanout; slow consumers drop.
type EventSink interface {
	Consume(ctx context.Context, e event.RoomEvent) error
}

// IRegistry tracks connected sessions and their delivery sinks.
type IRegistry interface {
	Connect(credential string, sink EventSink) (domain.Session, error)
	Disconnect(sessionID string)
	LiveCount() int
	Sinks() []EventSink
}

// IBus fans a room event out to every registered session.
type IBus interface {
	Publish(e event.RoomEvent)
}

// IGenerator is the external text-generation collaborator: one prompt
// in, generated text or an error out. Untrusted, slow, may time out.
type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IHistory is the bounded append-only chat log.
type IHistory interface {
	Append(text, author string) (domain.ChatEntry, error)
	Recent(limit int) ([]domain.ChatEntry, error)
	Trim(keep int) error
}

// IRoster owns robochatter records and their enabled flags.
type IRoster interface {
	List() []domain.RoboChatter
	Get(id int) (domain.RoboChatter, error)
	Toggle(id int) (domain.RoboChatter, error)
	Enabled() []domain.RoboChatter
	SetAllEnabled(enabled bool)
}
