// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - PhaseScheduled: capacity allocation finished for a project phase
//   - HourBlocksAssigned: workers were booked into hour blocks
//   - ProjectRescheduled: a project's install date moved and dates were rederived
//   - HolidaysReloaded: the holiday registry refreshed its cache
package events

// Event is implemented by every scheduling event. Topic is the suffix used
// when events are forwarded to an external broker.
type Event interface {
	Topic() string
}

// Publisher accepts events. The event bus implements it; a nil Publisher is
// never called by the services that hold one.
type Publisher interface {
	Publish(Event)
}
