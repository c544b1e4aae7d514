// Package eventbus fans scheduling events out to in-process subscribers.
package eventbus

import (
	"context"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
)

// EventBus publishes scheduling events. Delivery never blocks the publisher;
// a subscriber whose buffer is full misses the event.
type EventBus interface {
	Publish(events.Event)
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

// New creates a bus for scheduling events.
func New() *TypedBus[events.Event] { return NewTyped[events.Event]() }

// Forward calls fn for every value received on sub until ctx is cancelled
// or sub is closed.
func Forward[T any](ctx context.Context, sub <-chan T, fn func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-sub:
			if !ok {
				return
			}
			fn(v)
		}
	}
}
