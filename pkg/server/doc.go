// Package server streams a patchwork runtime to remote clients over
// WebSocket.
//
// Each connection gets a Session: an in-memory host.Document wrapped in a
// host.Recorder, and a vango.Runtime in deferred drain mode. The client
// mirrors the document by replaying the recorded mutations.
//
// # Frames
//
// All frames are JSON text messages.
//
// Server to client:
//
//	{"type":"hello","session":"3f9a..."}
//	{"type":"ops","ops":[{"op":1,"h":2,"n":"div"}, ...]}
//	{"type":"error","code":"E020","message":"No root registered for path"}
//
// Client to server:
//
//	{"type":"event","handle":7,"event":"click"}
//	{"type":"event","handle":9,"event":"input","value":"abc"}
//	{"type":"navigate","path":"/b"}
//
// An event frame dispatches the host event, drains the scheduler and
// answers with one ops frame holding every mutation the drain produced.
//
// # Routes
//
//	GET /healthz   liveness
//	GET /metrics   Prometheus exposition
//	GET /ws        session upgrade (Config.Path)
//
// # Thread Safety
//
// A session's runtime is owned by its read loop goroutine. The write lock
// only serializes frames on the connection. A panic raised while handling
// a frame is recovered, reported with an error frame, and ends the session.
package server
