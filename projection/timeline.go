// Package projection builds local read models from observed events.
// It never emits events and never touches storage.
package projection

import (
	"context"
	"sync"
	"time"

	"radchat/domain/event"
)

// TimelineItem is one rendered line of recent room activity. Unlike the
// persisted history it also captures transient lines such as action
// notices and system notices.
type TimelineItem struct {
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`
	Robot  bool      `json:"robot,omitempty"`
	At     time.Time `json:"at"`
}

// Timeline keeps the last capacity items seen on the bus.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	items    []TimelineItem
}

func NewTimeline(capacity int) *Timeline {
	return &Timeline{capacity: capacity}
}

func (t *Timeline) Consume(_ context.Context, e event.RoomEvent) error {
	var item TimelineItem
	switch evt := e.(type) {
	case event.Message:
		item = TimelineItem{Author: evt.Author, Text: evt.Text, Robot: evt.Robot, At: evt.At}
	case event.SystemNotice:
		item = TimelineItem{Text: evt.Text, At: time.Now().UTC()}
	default:
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, item)
	if len(t.items) > t.capacity {
		t.items = t.items[len(t.items)-t.capacity:]
	}
	return nil
}

// Items returns the retained activity, oldest first.
func (t *Timeline) Items() []TimelineItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TimelineItem, len(t.items))
	copy(out, t.items)
	return out
}
