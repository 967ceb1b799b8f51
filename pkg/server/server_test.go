package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/protocol"
	"github.com/vango-dev/patchwork/pkg/telemetry"
	"github.com/vango-dev/patchwork/pkg/vango"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

type tally struct{ n int }

func (c *tally) Update(int) bool { c.n++; return true }

func (c *tally) View(b *vango.Behavior[int]) *vdom.VNode {
	return vdom.Button(vdom.OnClick(b.Callback(func(host.Event) int { return 1 })), vdom.Textf("%d", c.n))
}

type fragile struct{}

func (fragile) Update(int) bool { panic("update exploded") }

func (fragile) View(b *vango.Behavior[int]) *vdom.VNode {
	return vdom.Button(vdom.OnClick(b.Callback(func(host.Event) int { return 1 })), vdom.Text("boom"))
}

var (
	tallyDef   = vango.Define("Tally", func(struct{}) vango.Component[int] { return &tally{} })
	fragileDef = vango.Define("Fragile", func(struct{}) vango.Component[int] { return fragile{} })
)

func testApp(rt *vango.Runtime) {
	rt.Handle("/", func() vango.Root { return tallyDef.Root(struct{}{}) })
	rt.Handle("/boom", func() vango.Root { return fragileDef.Root(struct{}{}) })
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) read() ServerFrame {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("ReadMessage() error = %v", err)
	}
	var f ServerFrame
	if err := json.Unmarshal(data, &f); err != nil {
		c.t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	return f
}

func (c *client) write(f ClientFrame) {
	c.t.Helper()
	data, err := json.Marshal(f)
	if err != nil {
		c.t.Fatal(err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.t.Fatalf("WriteMessage() error = %v", err)
	}
}

func findCreated(ops []host.Op, tag string) host.Handle {
	for _, op := range ops {
		if op.Kind == host.OpCreateElement && op.Name == tag {
			return op.Handle
		}
	}
	return host.None
}

func TestSessionMountAndEvent(t *testing.T) {
	ts := httptest.NewServer(New(testApp, quietConfig()))
	defer ts.Close()
	c := dial(t, ts)

	hello := c.read()
	if hello.Type != FrameHello || hello.Session == "" || hello.Root == host.None {
		t.Fatalf("hello = %+v", hello)
	}

	mount := c.read()
	if mount.Type != FrameOps || mount.Path != "/" {
		t.Fatalf("mount frame = %+v", mount)
	}
	button := findCreated(mount.Ops, "button")
	if button == host.None {
		t.Fatalf("no button in mount ops: %+v", mount.Ops)
	}

	c.write(ClientFrame{Type: FrameEvent, Handle: button, Event: "click"})
	update := c.read()
	if update.Type != FrameOps || len(update.Ops) != 1 {
		t.Fatalf("update frame = %+v", update)
	}
	if op := update.Ops[0]; op.Kind != host.OpSetText || op.Value != "1" {
		t.Errorf("update op = %+v, want SetText 1", op)
	}
	if mount.Seq != 1 || update.Seq != 2 {
		t.Errorf("seq = %d, %d, want 1, 2", mount.Seq, update.Seq)
	}
}

func TestSessionBinaryOps(t *testing.T) {
	cfg := quietConfig()
	cfg.BinaryOps = true
	ts := httptest.NewServer(New(testApp, cfg))
	defer ts.Close()
	c := dial(t, ts)

	if hello := c.read(); hello.Type != FrameHello {
		t.Fatalf("hello = %+v", hello)
	}

	readBinary := func() protocol.OpsFrame {
		t.Helper()
		c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		if mt != websocket.BinaryMessage {
			t.Fatalf("message type = %d, want binary", mt)
		}
		f, err := protocol.DecodeOpsFrame(data)
		if err != nil {
			t.Fatalf("DecodeOpsFrame() error = %v", err)
		}
		return f
	}

	mount := readBinary()
	if mount.Seq != 1 || mount.Path != "/" {
		t.Fatalf("mount frame seq=%d path=%q", mount.Seq, mount.Path)
	}
	button := findCreated(mount.Ops, "button")

	c.write(ClientFrame{Type: FrameEvent, Handle: button, Event: "click"})
	update := readBinary()
	want := []host.Op{{Kind: host.OpSetText, Handle: update.Ops[0].Handle, Value: "1"}}
	if diff := cmp.Diff(want, update.Ops); diff != "" {
		t.Errorf("update ops mismatch (-want +got):\n%s", diff)
	}
	if update.Path != "" {
		t.Errorf("update path = %q, want unchanged", update.Path)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := httptest.NewServer(New(testApp, quietConfig()))
	defer ts.Close()
	c := dial(t, ts)
	c.read() // hello
	c.read() // mount

	tests := []struct {
		name  string
		frame string
		code  string
	}{
		{"malformed json", `{"type":`, errors.CodeMalformedFrame},
		{"unknown type", `{"type":"poke"}`, errors.CodeMalformedFrame},
		{"dead handle", `{"type":"event","handle":999,"event":"click"}`, errors.CodeMalformedFrame},
		{"unknown route", `{"type":"navigate","path":"/nowhere"}`, errors.CodeRouteNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatal(err)
			}
			f := c.read()
			if f.Type != FrameError || f.Code != tt.code {
				t.Errorf("frame = %+v, want error %s", f, tt.code)
			}
		})
	}
}

func TestSessionNavigate(t *testing.T) {
	ts := httptest.NewServer(New(testApp, quietConfig()))
	defer ts.Close()
	c := dial(t, ts)
	c.read()
	c.read()

	c.write(ClientFrame{Type: FrameNavigate, Path: "/boom"})
	f := c.read()
	if f.Type != FrameOps || f.Path != "/boom" {
		t.Fatalf("navigate frame = %+v", f)
	}
	// Same tag: the button is reused and only its text changes.
	if findCreated(f.Ops, "button") != host.None {
		t.Errorf("navigate recreated the button: %+v", f.Ops)
	}
}

func TestSessionFaultClosesConnection(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := quietConfig()
	cfg.Route = "/boom"
	cfg.Metrics = telemetry.NewMetrics(telemetry.WithRegistry(reg))
	srv := New(testApp, cfg)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := dial(t, ts)
	c.read()
	mount := c.read()
	button := findCreated(mount.Ops, "button")

	c.write(ClientFrame{Type: FrameEvent, Handle: button, Event: "click"})
	f := c.read()
	if f.Type != FrameError || f.Code != errors.CodeSessionFault {
		t.Fatalf("frame = %+v, want %s", f, errors.CodeSessionFault)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := c.conn.ReadMessage(); err == nil {
		t.Error("connection still open after fault")
	}
}

func TestSessionFaultVisibleToOtherGoroutines(t *testing.T) {
	cfg := quietConfig()
	cfg.Route = "/boom"
	srv := New(testApp, cfg)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := dial(t, ts)
	c.read()
	button := findCreated(c.read().Ops, "button")

	srv.mu.Lock()
	var sess *Session
	for _, s := range srv.sessions {
		sess = s
	}
	srv.mu.Unlock()
	if sess == nil {
		t.Fatal("no live session after mount")
	}
	if err := sess.Fault(); err != nil {
		t.Fatalf("Fault() before event = %v, want nil", err)
	}

	// Read Fault concurrently with the session goroutine recording it.
	seen := make(chan error, 1)
	go func() {
		for {
			if err := sess.Fault(); err != nil {
				seen <- err
				return
			}
			select {
			case <-sess.Done():
				seen <- sess.Fault()
				return
			default:
			}
		}
	}()

	c.write(ClientFrame{Type: FrameEvent, Handle: button, Event: "click"})
	select {
	case err := <-seen:
		if err == nil {
			t.Error("Fault() = nil after a panicking update")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session fault never observed")
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testApp, quietConfig())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Sessions != 0 {
		t.Errorf("body = %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	m.RecordSessionOpen()

	cfg := quietConfig()
	cfg.Gatherer = reg
	srv := New(testApp, cfg)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "patchwork_active_sessions 1") {
		t.Errorf("metrics body missing gauge:\n%s", rec.Body.String())
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	srv := New(testApp, quietConfig())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := dial(t, ts)
	c.read()
	c.read()
	if got := srv.SessionCount(); got != 1 {
		t.Fatalf("SessionCount() = %d, want 1", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := srv.SessionCount(); got != 0 {
		t.Errorf("SessionCount() after shutdown = %d, want 0", got)
	}
}

func TestDecodeClientFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    ClientFrame
		wantErr bool
	}{
		{"event", `{"type":"event","handle":3,"event":"input","value":"hi"}`,
			ClientFrame{Type: FrameEvent, Handle: 3, Event: "input", Value: "hi"}, false},
		{"navigate", `{"type":"navigate","path":"/c"}`, ClientFrame{Type: FrameNavigate, Path: "/c"}, false},
		{"event without handle", `{"type":"event","event":"click"}`, ClientFrame{}, true},
		{"navigate without path", `{"type":"navigate"}`, ClientFrame{}, true},
		{"not json", `nope`, ClientFrame{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeClientFrame([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeClientFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.HasCode(err, errors.CodeMalformedFrame) {
					t.Errorf("error code = %v, want %s", err, errors.CodeMalformedFrame)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeClientFrame() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
