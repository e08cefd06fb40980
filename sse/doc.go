// Package sse streams Server-Sent Events to HTTP clients.
//
// A Hub routes published events to connected clients whose IDs match a
// glob pattern. ServeSSE registers one client per request and writes the
// events it receives until the client disconnects, the hub stops or an
// event marked Last is delivered.
//
//	hub := sse.NewHub(log)
//	defer hub.Stop()
//	hub.Publish("job:42:*", sse.Event{Name: "status", Data: payload})
package sse
