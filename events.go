package tacklebox

import (
	"time"
)

// EventKind identifies the type of event emitted by the toolkit.
type EventKind string

const (
	// EventMenuRebuilt is emitted after a full menu rebuild.
	EventMenuRebuilt EventKind = "menu.rebuilt"

	// EventEntryRegistered is emitted for each clickable entry added to
	// the registry, before the rebuild it triggers.
	EventEntryRegistered EventKind = "entry.registered"

	// EventRecordLoaded is emitted for each manifest record that became a
	// clickable entry.
	EventRecordLoaded EventKind = "record.loaded"

	// EventRecordSkipped is emitted for each manifest record the loader
	// dropped, with the reason in the payload.
	EventRecordSkipped EventKind = "record.skipped"

	// EventManifestSaved is emitted after the manifest file is rewritten
	// on disk.
	EventManifestSaved EventKind = "manifest.saved"

	// EventToolStarted is emitted when a tool action begins executing.
	EventToolStarted EventKind = "tool.started"

	// EventToolFinished is emitted when a tool action completes.
	EventToolFinished EventKind = "tool.finished"

	// EventToolFailed is emitted when a tool action returns an error.
	EventToolFailed EventKind = "tool.failed"

	// EventScanStarted is emitted when a maintenance scan begins.
	EventScanStarted EventKind = "scan.started"

	// EventScanFinished is emitted when a maintenance scan completes.
	EventScanFinished EventKind = "scan.finished"

	// EventScanFailed is emitted when a maintenance scan returns an error.
	EventScanFailed EventKind = "scan.failed"
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string { return string(k) }

// Event is a structured record of what happened. Events are for wiring
// observability, not for carrying results; reports and note lists belong
// in files and return values, not payloads.
type Event struct {
	// Kind identifies the event type.
	Kind EventKind

	// RunID identifies one tool invocation or scan run. Registry-level
	// events (rebuilds, loads, saves) leave it empty.
	RunID string

	// Ref is the action reference ("module.function") or scan name
	// involved, when there is one.
	Ref string

	// Path is the submenu path involved, when there is one.
	Path string

	// Time is when the event occurred.
	Time time.Time

	// Elapsed is the duration since the run started, for terminal events.
	Elapsed time.Duration

	// Payload contains event-specific data.
	Payload map[string]any
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind EventKind, runID string) Event {
	return Event{
		Kind:    kind,
		RunID:   runID,
		Time:    time.Now(),
		Payload: make(map[string]any),
	}
}

// WithRef returns the event with the action reference or scan name set.
func (e Event) WithRef(ref string) Event {
	e.Ref = ref
	return e
}

// WithPath returns the event with the submenu path set.
func (e Event) WithPath(path string) Event {
	e.Path = path
	return e
}

// WithElapsed returns the event with the elapsed duration set.
func (e Event) WithElapsed(elapsed time.Duration) Event {
	e.Elapsed = elapsed
	return e
}

// WithPayload returns the event with an additional payload entry.
func (e Event) WithPayload(key string, value any) Event {
	if e.Payload == nil {
		e.Payload = make(map[string]any)
	}
	e.Payload[key] = value
	return e
}

// EventHandler is a function type for handling events.
type EventHandler func(Event)

// MultiEventHandler combines multiple handlers into one. Nil handlers are
// skipped.
func MultiEventHandler(handlers ...EventHandler) EventHandler {
	return func(e Event) {
		for _, h := range handlers {
			if h != nil {
				h(e)
			}
		}
	}
}

// ChannelEventHandler returns a handler that sends events to a channel.
// Events are dropped if the channel is full.
func ChannelEventHandler(ch chan<- Event) EventHandler {
	return func(e Event) {
		select {
		case ch <- e:
		default:
			// Drop event if channel is full
		}
	}
}
