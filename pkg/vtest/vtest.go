package vtest

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vango"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Option configures the runtime a Harness mounts into.
type Option func(*vango.Config)

// WithMode sets the scheduler drain mode.
func WithMode(mode vango.DrainMode) Option {
	return func(c *vango.Config) { c.Mode = mode }
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *vango.Config) { c.Logger = logger }
}

// WithObserver sets the scheduler observer.
func WithObserver(o vango.Observer) Option {
	return func(c *vango.Config) { c.Observer = o }
}

// Harness is a mounted root component and the document it renders into.
type Harness struct {
	t tb

	Doc     *host.Document
	Rec     *host.Recorder
	Runtime *vango.Runtime
	Root    *vango.Node

	mountPoint host.Handle
}

// tb is the subset of testing.TB the harness reports through.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Mount renders root into a fresh document and clears the recorded mount
// mutations.
func Mount(t testing.TB, root vango.Root, opts ...Option) *Harness {
	t.Helper()
	return mount(t, root, opts)
}

func mount(t tb, root vango.Root, opts []Option) *Harness {
	t.Helper()
	cfg := vango.Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.RootID == "" {
		cfg.RootID = vango.DefaultRootID
	}

	doc := host.NewDocument("body")
	mp := doc.CreateElement("div")
	doc.SetAttribute(mp, "id", cfg.RootID)
	doc.AppendChild(doc.Root(), mp)

	rec := host.NewRecorder(doc)
	rt := vango.NewRuntime(rec, cfg)
	n, err := rt.MountRootByID(root)
	if err != nil {
		t.Fatalf("vtest: mount failed: %v", err)
		return nil
	}
	rec.Reset()

	return &Harness{
		t:          t,
		Doc:        doc,
		Rec:        rec,
		Runtime:    rt,
		Root:       n,
		mountPoint: mp,
	}
}

// Find returns the element whose data-action attribute equals action. The
// test fails if there is none.
func (h *Harness) Find(action string) host.Handle {
	h.t.Helper()
	return h.Query("data-action", action)
}

// Query returns the first element whose attribute name equals value. The
// test fails if there is none.
func (h *Harness) Query(name, value string) host.Handle {
	h.t.Helper()
	el := h.Doc.QueryAttr(name, value)
	if el == host.None {
		h.t.Fatalf("vtest: no element with %s=%q in:\n%s", name, value, truncate(h.HTML(), 500))
	}
	return el
}

// Fire dispatches ev on target and drains the scheduler. The test fails if
// no listener handled it.
func (h *Harness) Fire(target host.Handle, ev host.Event) {
	h.t.Helper()
	if !h.Doc.IsLive(target) {
		h.t.Fatalf("vtest: %s on dead handle %d", ev.Type, target)
		return
	}
	if !h.Doc.Dispatch(target, ev) {
		h.t.Fatalf("vtest: no %s listener on <%s>", ev.Type, h.Doc.Tag(target))
		return
	}
	h.Runtime.Drain(context.Background())
}

// Click fires a click on target.
func (h *Harness) Click(target host.Handle) {
	h.t.Helper()
	h.Fire(target, host.Event{Type: "click"})
}

// Input fires an input event carrying value on target.
func (h *Harness) Input(target host.Handle, value string) {
	h.t.Helper()
	h.Fire(target, host.Event{Type: "input", Value: value})
}

// HTML serializes the mount point's contents.
func (h *Harness) HTML() string {
	return h.Doc.InnerHTML(h.mountPoint)
}

// Text returns the serialized contents of el.
func (h *Harness) Text(el host.Handle) string {
	return h.Doc.InnerHTML(el)
}

// Ops returns the mutations recorded since the last call and clears them.
func (h *Harness) Ops() []host.Op {
	return h.Rec.Reset()
}

// OpCounts is Ops keyed by op name.
func (h *Harness) OpCounts() map[string]int {
	counts := make(map[string]int)
	for _, op := range h.Ops() {
		counts[op.Kind.String()]++
	}
	return counts
}

// Child follows component children from the root. Each index selects a
// direct child of the current component's top element, which must itself
// be a mounted component.
func (h *Harness) Child(path ...int) *vango.Node {
	h.t.Helper()
	n := h.Root
	for _, i := range path {
		tree := n.Tree()
		if tree == nil || i >= len(tree.Children) {
			h.t.Fatalf("vtest: %s has no child %d", n.Name(), i)
			return nil
		}
		c := tree.Children[i]
		next, ok := mountedNode(c)
		if !ok {
			h.t.Fatalf("vtest: child %d of %s is a %s, not a component", i, n.Name(), c.Kind)
			return nil
		}
		n = next
	}
	return n
}

func mountedNode(v *vdom.VNode) (*vango.Node, bool) {
	if v.Kind != vdom.KindComponent || v.Mounted == nil {
		return nil, false
	}
	n, ok := v.Mounted.(*vango.Node)
	return n, ok
}

// ExpectHTML fails the test unless the mount point serializes to want.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("HTML mismatch:\n got: %s\nwant: %s", got, want)
	}
}

// ExpectContains fails the test unless the rendered output contains s.
func (h *Harness) ExpectContains(s string) {
	h.t.Helper()
	if html := h.HTML(); !strings.Contains(html, s) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", s, truncate(html, 500))
	}
}

// ExpectNotContains fails the test if the rendered output contains s.
func (h *Harness) ExpectNotContains(s string) {
	h.t.Helper()
	if html := h.HTML(); strings.Contains(html, s) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", s, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
