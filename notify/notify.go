// SPDX-License-Identifier: EPL-2.0

// Package notify carries user-facing notifications from the engine to the
// shell that hosts it.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/internal/metrics"
)

// EventError is the name of error notifications shown to the user.
const EventError = "notification-error"

// Event is one notification.
type Event struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Emitter is implemented by anything that accepts notifications.
type Emitter interface {
	Emit(Event)
}

// Error emits an error notification with message on e.
func Error(e Emitter, message string) {
	e.Emit(Event{Name: EventError, Message: message})
}

// Bus fans events out to subscribers. Emit never blocks: an event that does
// not fit a subscriber's buffer is dropped for that subscriber.
type Bus struct {
	subscribers map[string]chan Event
	mutex       sync.RWMutex
	logger      zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]chan Event),
		logger:      logging.Component(logger, "notify"),
	}
}

// Subscribe registers a subscriber with room for buffer pending events.
// The returned id is passed to Unsubscribe.
func (b *Bus) Subscribe(buffer int) (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, max(buffer, 1))

	b.mutex.Lock()
	b.subscribers[id] = ch
	b.mutex.Unlock()

	b.logger.Debug().Str("subscriber", id).Msg("subscription added")

	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mutex.Lock()
	ch, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mutex.Unlock()

	if ok {
		close(ch)
		b.logger.Debug().Str("subscriber", id).Msg("subscription removed")
	}
}

func (b *Bus) Emit(ev Event) {
	if ev.Name == EventError {
		b.logger.Warn().Str("event", ev.Name).Msg(ev.Message)
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			metrics.NotifyDropped.Inc()
			b.logger.Debug().Str("subscriber", id).Str("event", ev.Name).Msg("subscriber full, event dropped")
		}
	}
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
