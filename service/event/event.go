// Package event publishes kernel scheduling and lifecycle events to an
// optional observer.
package event

import "time"

// Type names a kernel event.
type Type string

const (
	TypeDispatch Type = "dispatch"
	TypeBlock    Type = "block"
	TypeWake     Type = "wake"
	TypeExit     Type = "exit"
	TypeRefuse   Type = "refuse"
	TypeSpawn    Type = "spawn"
	TypeReap     Type = "reap"
)

// Event describes one kernel occurrence.
type Event struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Pid       int               `json:"pid"`
	Tid       int               `json:"tid"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// New creates an event for a thread.
func New(eventType Type, pid, tid int) *Event {
	return &Event{Type: eventType, Pid: pid, Tid: tid}
}

// With adds a metadata entry.
func (e *Event) With(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}
