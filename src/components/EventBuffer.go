package components

import (
	"sync"

	"github.com/PsycoVenom0/security-relay/src/models"
)

// EventBuffer keeps the most recent events, the oldest one is dropped when
// the buffer is full.
type EventBuffer struct {
	mu     sync.Mutex
	size   int
	events []models.Event
}

func NewEventBuffer(size int) *EventBuffer {
	if size <= 0 {
		size = 1
	}
	return &EventBuffer{
		size:   size,
		events: make([]models.Event, 0, size),
	}
}

func (b *EventBuffer) Add(event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == b.size {
		copy(b.events, b.events[1:])
		b.events = b.events[:b.size-1]
	}
	b.events = append(b.events, event)
}

// Latest returns a copy of the buffered events, newest first.
func (b *EventBuffer) Latest() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	latest := make([]models.Event, len(b.events))
	for i, event := range b.events {
		latest[len(b.events)-1-i] = event
	}
	return latest
}

func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
