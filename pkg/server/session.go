package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/protocol"
	"github.com/vango-dev/patchwork/pkg/vango"
)

// AppFunc registers an application's routes on a fresh session runtime.
type AppFunc func(rt *vango.Runtime)

// Session is one client connection and the runtime it drives.
type Session struct {
	ID string

	conn   *websocket.Conn
	doc    *host.Document
	rec    *host.Recorder
	rt     *vango.Runtime
	cfg    Config
	logger *slog.Logger

	// path last reported to the client
	sentPath string

	// seq numbers ops frames from 1.
	seq uint64
	enc *protocol.Encoder

	// writeMu guards the connection writer and fault.
	writeMu   sync.Mutex
	fault     error
	closeOnce sync.Once
	done      chan struct{}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession creates a session for conn and registers app's routes.
func newSession(conn *websocket.Conn, app AppFunc, cfg Config) *Session {
	id := generateSessionID()
	logger := cfg.Logger.With("session_id", id)

	doc := host.NewDocument("body")
	var r host.Renderer = doc
	if cfg.Metrics != nil {
		r = cfg.Metrics.Instrument(doc)
	}
	rec := host.NewRecorder(r)

	rt := vango.NewRuntime(rec, vango.Config{
		RootID:   cfg.RootID,
		Mode:     vango.DrainDeferred,
		Logger:   logger,
		Observer: cfg.Observer,
	})
	app(rt)

	return &Session{
		ID:     id,
		conn:   conn,
		doc:    doc,
		rec:    rec,
		rt:     rt,
		cfg:    cfg,
		logger: logger,
		enc:    protocol.NewEncoder(),
		done:   make(chan struct{}),
	}
}

// Done is closed when the session's read loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Fault returns the error that terminated the session, or nil.
// It is safe to call from any goroutine.
func (s *Session) Fault() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.fault
}

// run owns the runtime for the lifetime of the connection. It returns when
// the client disconnects or a frame handler faults.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.Close()

	s.send(ServerFrame{Type: FrameHello, Session: s.ID, Root: s.doc.Root()})
	if !s.dispatch(func() error { return s.rt.Navigate(s.cfg.Route) }) {
		return
	}

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			break
		}

		frame, err := DecodeClientFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.send(errorFrame(err))
			continue
		}

		if !s.dispatch(func() error { return s.handle(ctx, frame) }) {
			return
		}
	}

	s.rt.Close()
}

// handle applies one client frame to the runtime.
func (s *Session) handle(ctx context.Context, f ClientFrame) error {
	switch f.Type {
	case FrameEvent:
		if !s.doc.IsLive(f.Handle) {
			return errors.New(errors.CodeMalformedFrame).
				WithDetail("handle %d is not live", f.Handle)
		}
		if !s.doc.Dispatch(f.Handle, host.Event{Type: f.Event, Value: f.Value}) {
			s.logger.Debug("event without listener", "handle", f.Handle, "event", f.Event)
		}
		s.rt.Drain(ctx)
	case FrameNavigate:
		return s.rt.Navigate(f.Path)
	}
	return nil
}

// dispatch runs fn with panic recovery and flushes the resulting host
// mutations. It reports false when fn faulted and the session must end.
func (s *Session) dispatch(fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err := errors.Recovered(r)
			s.logger.Error("runtime panic",
				"error", err,
				"stack", string(stack))
			s.writeMu.Lock()
			s.fault = err
			s.writeMu.Unlock()
			s.send(errorFrame(errors.New(errors.CodeSessionFault).Wrap(err)))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		s.logger.Warn("frame rejected", "error", err)
		s.send(errorFrame(err))
	}
	s.flush()
	return true
}

// flush sends every mutation recorded since the last flush.
func (s *Session) flush() {
	ops := s.rec.Reset()
	path := s.rt.Path()
	if len(ops) == 0 && path == s.sentPath {
		return
	}
	s.seq++
	f := ServerFrame{Type: FrameOps, Seq: s.seq, Ops: ops}
	if path != s.sentPath {
		f.Path = path
		s.sentPath = path
	}
	if s.cfg.BinaryOps {
		s.enc.Reset()
		protocol.EncodeOpsFrame(s.enc, protocol.OpsFrame{Seq: f.Seq, Path: f.Path, Ops: f.Ops})
		s.write(websocket.BinaryMessage, f.Type, s.enc.Bytes())
		return
	}
	s.send(f)
}

// send writes one JSON frame.
func (s *Session) send(f ServerFrame) {
	data, err := EncodeServerFrame(f)
	if err != nil {
		s.logger.Error("frame encode error", "type", f.Type, "error", err)
		return
	}
	s.write(websocket.TextMessage, f.Type, data)
}

// write sends one message. Write errors are logged; the read loop notices
// a dead connection on its own.
func (s *Session) write(messageType int, frameType string, data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.logger.Debug("write error", "type", frameType, "error", err)
		return
	}
	s.cfg.Metrics.RecordFrame(frameType)
}

// Close sends a close frame and closes the connection. It is safe to call
// from any goroutine; the read loop exits once the connection is closed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()
	})
}
