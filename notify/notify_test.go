// SPDX-License-Identifier: EPL-2.0

package notify

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	t.Parallel()

	bus := NewBus(zerolog.Nop())
	_, a := bus.Subscribe(4)
	_, b := bus.Subscribe(4)

	Error(bus, "file not found")

	want := Event{Name: EventError, Message: "file not found"}
	assert.Equal(t, want, <-a)
	assert.Equal(t, want, <-b)
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	bus := NewBus(zerolog.Nop())
	_, ch := bus.Subscribe(1)

	bus.Emit(Event{Name: "first"})
	bus.Emit(Event{Name: "second"})

	require.Len(t, ch, 1)
	assert.Equal(t, "first", (<-ch).Name)
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus(zerolog.Nop())
	id, ch := bus.Subscribe(1)
	bus.Unsubscribe(id)
	bus.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)

	bus.Emit(Event{Name: "after"})
}

func TestBus_ConcurrentEmit(t *testing.T) {
	t.Parallel()

	bus := NewBus(zerolog.Nop())
	_, ch := bus.Subscribe(100)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				bus.Emit(Event{Name: "tick"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ch, 100)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	Error(&r, "boom")

	events := r.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Name)
	assert.Equal(t, "boom", events[0].Message)
}
