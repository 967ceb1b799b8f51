package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/patchwork/pkg/telemetry"
	"github.com/vango-dev/patchwork/pkg/vango"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// Path is the WebSocket endpoint (default: "/ws").
	Path string

	// Route is the path every new session navigates to first (default: "/").
	Route string

	// RootID is the id of the mount point element in each session document.
	RootID string

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// ReadLimit is the largest client frame accepted, in bytes.
	ReadLimit int64

	// BinaryOps sends ops frames as binary messages in the protocol
	// package encoding. Hello and error frames stay JSON.
	BinaryOps bool

	// CheckOrigin validates the Origin header of upgrade requests.
	// Default: same-origin only (gorilla/websocket default).
	CheckOrigin func(r *http.Request) bool

	// Logger receives server and session logs.
	Logger *slog.Logger

	// Metrics records session and runtime metrics. May be nil.
	Metrics *telemetry.Metrics

	// Observer receives scheduler activity from every session runtime.
	Observer vango.Observer

	// Gatherer backs the /metrics endpoint.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:8080",
		Path:         "/ws",
		Route:        "/",
		RootID:       vango.DefaultRootID,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    64 * 1024,
		Gatherer:     prometheus.DefaultGatherer,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.Route == "" {
		c.Route = d.Route
	}
	if c.RootID == "" {
		c.RootID = d.RootID
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.Gatherer == nil {
		c.Gatherer = d.Gatherer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
