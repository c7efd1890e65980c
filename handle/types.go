package handle

import (
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/serialization"
)

// EventType identifies a table lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event describes one entry entering or leaving a Table.
type Event struct {
	Value  any
	Kind   module.Kind
	Handle serialization.Handle
	Type   EventType
}

// Observer receives table lifecycle events. Observers are called
// synchronously and must not call back into the table.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Dropper is optionally implemented by values that need cleanup when their
// handle is removed.
type Dropper interface {
	Drop()
}
