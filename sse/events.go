package sse

import (
	"encoding/json"
	"fmt"
	"io"
)

// Event type names.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"
	// EventTypeStatus carries a job status change.
	EventTypeStatus = "status"
)

// Event is one SSE frame.
type Event struct {
	// Name is written as the "event:" field. Empty means the default
	// "message" event.
	Name string
	// Data is written as the "data:" field.
	Data []byte
	// Last ends the stream once the event is written.
	Last bool
	// Seq orders events of one stream. When set, an event at or below the
	// highest Seq already written is not sent.
	Seq uint64
}

// JSONEvent marshals v into an event named name.
func JSONEvent(name string, v any, last bool) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("sse: encode %s event: %w", name, err)
	}
	return Event{Name: name, Data: data, Last: last}, nil
}

// WriteTo writes the event in wire format.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var n int
	var err error
	if e.Name != "" {
		n, err = fmt.Fprintf(w, "event: %s\n", e.Name)
		if err != nil {
			return int64(n), err
		}
	}
	m, err := fmt.Fprintf(w, "data: %s\n\n", e.Data)
	return int64(n + m), err
}
