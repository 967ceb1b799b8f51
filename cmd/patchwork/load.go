package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/demo"
	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/server"
)

type loadOptions struct {
	Clients  int
	Duration time.Duration
	RPS      float64
	Scenario string
}

type loadReport struct {
	Events    uint64
	Errors    uint64
	Latencies []time.Duration // sorted
	Alloc     uint64
	NumGC     uint32
}

func loadCmd() *cobra.Command {
	opts := loadOptions{
		Clients:  50,
		Duration: 10 * time.Second,
		RPS:      5,
		Scenario: "a",
	}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Measure event round trips against an in-process server",
		Long: `Start the demo server on a loopback port and drive concurrent
WebSocket clients against it. Each client clicks the scenario's action
and waits for the ops frame it produces.

Examples:
  patchwork load
  patchwork load --clients 200 --duration 30s --rps 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Clients <= 0 || opts.Duration <= 0 || opts.RPS <= 0 {
				return errors.New(errors.CodeInvalidConfig).
					WithDetail("--clients, --duration and --rps must be positive")
			}
			report, err := runLoad(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printLoadReport(cmd.OutOrStdout(), opts, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Clients, "clients", opts.Clients, "Number of concurrent clients")
	cmd.Flags().DurationVar(&opts.Duration, "duration", opts.Duration, "How long to run")
	cmd.Flags().Float64Var(&opts.RPS, "rps", opts.RPS, "Target events per second per client")
	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", opts.Scenario, "Scenario whose action is clicked")

	return cmd
}

// runLoad serves the demo on a loopback listener and runs the clients until
// opts.Duration elapses.
func runLoad(ctx context.Context, opts loadOptions) (loadReport, error) {
	sc, err := demo.Lookup(opts.Scenario)
	if err != nil {
		return loadReport{}, err
	}

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return loadReport{}, errors.New(errors.CodeInternal).Wrap(err)
	}
	cfg := server.DefaultConfig()
	cfg.Route = sc.Path
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(demo.App, cfg)
	httpServer := &http.Server{Handler: srv.Handler()}
	go httpServer.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		srv.Shutdown(shutdownCtx)
	}()

	url := "ws://" + ln.Addr().String() + cfg.Path

	ctx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	var (
		mu      sync.Mutex
		samples []time.Duration
		events  atomic.Uint64
		errs    atomic.Uint64
	)
	record := func(rtt time.Duration) {
		mu.Lock()
		samples = append(samples, rtt)
		mu.Unlock()
		events.Add(1)
	}

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	var wg sync.WaitGroup
	wg.Add(opts.Clients)
	for i := 0; i < opts.Clients; i++ {
		go func() {
			defer wg.Done()
			if err := runLoadClient(ctx, url, sc.Action, opts.RPS, record); err != nil {
				errs.Add(1)
			}
		}()
	}
	wg.Wait()

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	slices.Sort(samples)
	return loadReport{
		Events:    events.Load(),
		Errors:    errs.Load(),
		Latencies: samples,
		Alloc:     after.TotalAlloc - before.TotalAlloc,
		NumGC:     after.NumGC - before.NumGC,
	}, nil
}

// runLoadClient clicks the element tagged with action until ctx is done.
// Each event is gated on the ops frame that answers it.
func runLoadClient(ctx context.Context, url, action string, rps float64, record func(time.Duration)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	read := func() (server.ServerFrame, error) {
		var f server.ServerFrame
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return f, err
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return f, err
		}
		if f.Type == server.FrameError {
			return f, fmt.Errorf("server error %s: %s", f.Code, f.Message)
		}
		return f, nil
	}

	if _, err := read(); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	mount, err := read()
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	target := actionHandle(mount.Ops, action)
	if target == host.None {
		return fmt.Errorf("no element with data-action %q", action)
	}

	event, err := json.Marshal(server.ClientFrame{Type: server.FrameEvent, Handle: target, Event: "click"})
	if err != nil {
		return err
	}

	period := time.Duration(float64(time.Second) / rps)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		start := time.Now()
		if err := conn.WriteMessage(websocket.TextMessage, event); err != nil {
			return fmt.Errorf("event write: %w", err)
		}
		if _, err := read(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("ops: %w", err)
		}
		record(time.Since(start))

		if sleep := period - time.Since(start); sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// actionHandle returns the element whose data-action attribute was set to
// action in ops.
func actionHandle(ops []host.Op, action string) host.Handle {
	for _, op := range ops {
		if op.Kind == host.OpSetAttr && op.Name == "data-action" && op.Value == action {
			return op.Handle
		}
	}
	return host.None
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}

func printLoadReport(w io.Writer, opts loadOptions, r loadReport) {
	seconds := math.Max(0.001, opts.Duration.Seconds())
	success(w, "load: %d clients for %s on scenario %s", opts.Clients, opts.Duration, opts.Scenario)
	info(w, "events:     %d", r.Events)
	info(w, "errors:     %d", r.Errors)
	info(w, "throughput: %.1f events/s", float64(r.Events)/seconds)
	if n := len(r.Latencies); n > 0 {
		info(w, "rtt min:    %s", r.Latencies[0])
		info(w, "rtt p50:    %s", percentile(r.Latencies, 0.50))
		info(w, "rtt p95:    %s", percentile(r.Latencies, 0.95))
		info(w, "rtt p99:    %s", percentile(r.Latencies, 0.99))
		info(w, "rtt max:    %s", r.Latencies[n-1])
	}
	info(w, "alloc:      %.2f MB", float64(r.Alloc)/(1024*1024))
	info(w, "num_gc:     %d", r.NumGC)
}
