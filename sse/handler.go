package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/chunkscribe/logger"
)

// KeepAliveInterval is how often a comment line is written to idle streams.
// It stays below common proxy idle timeouts.
var KeepAliveInterval = 30 * time.Second

// ServeSSE streams events for one client until the request ends, the hub
// stops or a Last event is written. initial, when non-nil, is called once the
// client is registered and its events are written before anything published,
// so no event falls between a state snapshot and the subscription. Events
// published before the snapshot was taken are dropped by their Seq.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, initial func() []Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived responses must not hit the server's write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("could not clear write deadline", logger.MergeWithError(logger.Fields("client_id", clientID), err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.WriteHeader(http.StatusOK)
	var first []Event
	if initial != nil {
		first = initial()
	}
	var seen uint64
	for _, ev := range first {
		if _, err := ev.WriteTo(w); err != nil {
			return
		}
		seen = max(seen, ev.Seq)
		if ev.Last {
			flusher.Flush()
			return
		}
	}
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			if ev.Seq != 0 && ev.Seq <= seen {
				continue
			}
			seen = max(seen, ev.Seq)
			if _, err := ev.WriteTo(w); err != nil {
				return
			}
			flusher.Flush()
			if ev.Last {
				return
			}

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}
