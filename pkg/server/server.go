package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server accepts WebSocket sessions and serves health and metrics
// endpoints.
type Server struct {
	cfg      Config
	app      AppFunc
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup

	httpServer *http.Server
}

// New creates a server whose sessions run app.
func New(app AppFunc, cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg: cfg,
		app: app,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger:   cfg.Logger,
		sessions: make(map[string]*Session),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	r.Get(s.cfg.Path, s.handleWebSocket)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server's router for mounting in another mux.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{Status: "ok", Sessions: s.SessionCount()})
}

// handleWebSocket upgrades the request and runs the session on the
// request goroutine until it ends.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	sess := newSession(conn, s.app, s.cfg)
	s.add(sess)
	defer s.remove(sess)

	s.logger.Info("session opened",
		"session_id", sess.ID,
		"remote", r.RemoteAddr,
		"request_id", middleware.GetReqID(r.Context()))
	sess.run(r.Context())
	s.logger.Info("session closed", "session_id", sess.ID, "fault", sess.Fault() != nil)
}

func (s *Server) add(sess *Session) {
	s.wg.Add(1)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.cfg.Metrics.RecordSessionOpen()
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	s.cfg.Metrics.RecordSessionClose(sess.Fault() != nil)
	s.wg.Done()
}

// ListenAndServe serves on Config.Addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "ws", s.cfg.Path)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, closes every session and waits
// for their loops to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}
