package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDemoCommand(t *testing.T) {
	path := writeConfig(t, "drainMode: deferred\nlogLevel: error\n")

	out, err := execute(t, "demo", "--scenario", "b", "--clicks", "2", "--config", path)
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}
	for _, want := range []string{
		"scenario b",
		"mode: deferred",
		"<li>item 0</li><li>item 1</li>",
		"clicks ops: 8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDemoCommandUnknownScenario(t *testing.T) {
	path := writeConfig(t, "logLevel: error\n")
	if _, err := execute(t, "demo", "-s", "z", "-c", path); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func TestServerConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9999
  allowedOrigins: ["https://ok.example"]
metrics:
  enabled: true
tracing:
  enabled: true
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	sc := serverConfig(cfg, newLogger(&bytes.Buffer{}, cfg.Level()))
	if sc.Addr != "127.0.0.1:9999" || sc.Path != config.DefaultPath {
		t.Errorf("addr/path = %q %q", sc.Addr, sc.Path)
	}
	if sc.Metrics == nil || sc.Gatherer == nil || sc.Observer == nil {
		t.Fatalf("telemetry not wired: metrics=%v gatherer=%v observer=%v", sc.Metrics, sc.Gatherer, sc.Observer)
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://ok.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/ws", nil)
		req.Header.Set("Origin", tt.origin)
		if got := sc.CheckOrigin(req); got != tt.want {
			t.Errorf("CheckOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestServerConfigWithoutTelemetry(t *testing.T) {
	sc := serverConfig(config.New(), newLogger(&bytes.Buffer{}, 0))
	if sc.Metrics != nil || sc.Observer != nil || sc.CheckOrigin != nil {
		t.Errorf("unexpected wiring: %+v", sc)
	}
}

func TestRunLoad(t *testing.T) {
	report, err := runLoad(context.Background(), loadOptions{
		Clients:  2,
		Duration: 300 * time.Millisecond,
		RPS:      50,
		Scenario: "a",
	})
	if err != nil {
		t.Fatalf("runLoad() error = %v", err)
	}
	if report.Errors != 0 {
		t.Errorf("Errors = %d, want 0", report.Errors)
	}
	if report.Events == 0 || len(report.Latencies) != int(report.Events) {
		t.Errorf("Events = %d, latencies = %d", report.Events, len(report.Latencies))
	}
	if !slices.IsSorted(report.Latencies) {
		t.Error("latencies not sorted")
	}
}

func TestRunLoadUnknownScenario(t *testing.T) {
	_, err := runLoad(context.Background(), loadOptions{Clients: 1, Duration: time.Second, RPS: 1, Scenario: "zzz"})
	if !errors.HasCode(err, errors.CodeRouteNotFound) {
		t.Errorf("runLoad() error = %v, want %s", err, errors.CodeRouteNotFound)
	}
}

func TestLoadCommandRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "load", "--clients", "0")
	if !errors.HasCode(err, errors.CodeInvalidConfig) {
		t.Errorf("load error = %v, want %s", err, errors.CodeInvalidConfig)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{0.5, 5},
		{0.95, 10},
		{1, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}
