package vdom

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/patchwork/pkg/host"
)

// fixture mounts trees into a recorded in-memory document.
type fixture struct {
	doc *host.Document
	rec *host.Recorder
	p   *Patcher
}

func newFixture() *fixture {
	doc := host.NewDocument("body")
	rec := host.NewRecorder(doc)
	return &fixture{doc: doc, rec: rec, p: NewPatcher(rec)}
}

func (f *fixture) root() host.Handle { return f.doc.Root() }

func (f *fixture) html() string { return f.doc.InnerHTML(f.doc.Root()) }

// mount patches tree against nothing and clears the op log.
func (f *fixture) mount(tree *VNode) *VNode {
	f.p.Patch(tree, nil, f.root())
	f.rec.Reset()
	return tree
}

func TestPatchFreshMount(t *testing.T) {
	f := newFixture()
	tree := Div(Class("card"),
		H1(Text("Title")),
		List(Text("a"), Text("b")),
		Input(Type("text"), Disabled(false)),
	)
	f.p.Patch(tree, nil, f.root())

	want := `<div class="card"><h1>Title</h1>ab<input type="text"></div>`
	if got := f.html(); got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if tree.Host == host.None {
		t.Error("root element has no host handle")
	}
	if got := f.rec.Count(host.OpAppend); got != 6 {
		t.Errorf("appends = %d, want 6", got)
	}
}

func TestPatchIdempotent(t *testing.T) {
	build := func() *VNode {
		return Div(Class("a"), ID("x"),
			Span(Text("one")),
			List(Li(Key("k1"), Text("two")), Text("three")),
			Ul(Li(Text("four"))),
		)
	}
	f := newFixture()
	prev := f.mount(build())

	next := build()
	f.p.Patch(next, prev, f.root())

	if n := f.rec.Len(); n != 0 {
		t.Errorf("unchanged patch issued %d host ops: %v", n, f.rec.Ops())
	}
	if next.Host == host.None || prev.Host != host.None {
		t.Errorf("handle not transferred: next=%v prev=%v", next.Host, prev.Host)
	}
}

func TestPatchSameNodeIsNoop(t *testing.T) {
	f := newFixture()
	tree := f.mount(Div(Text("x")))
	f.p.Patch(tree, tree, f.root())
	if tree.Host == host.None || f.rec.Len() != 0 {
		t.Errorf("self patch changed state: host=%v ops=%d", tree.Host, f.rec.Len())
	}
}

func TestTextStability(t *testing.T) {
	f := newFixture()
	prev := f.mount(Text("hello"))
	h := prev.Host

	same := Text("hello")
	f.p.Patch(same, prev, f.root())
	if same.Host != h {
		t.Errorf("identical text: host = %v, want %v", same.Host, h)
	}
	if f.rec.Len() != 0 {
		t.Errorf("identical text issued ops: %v", f.rec.Ops())
	}

	changed := Text("world")
	f.p.Patch(changed, same, f.root())
	want := []host.Op{{Kind: host.OpSetText, Handle: h, Value: "world"}}
	if diff := cmp.Diff(want, f.rec.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if changed.Host != h {
		t.Errorf("changed text: host = %v, want %v", changed.Host, h)
	}
}

func TestTextReplacesElement(t *testing.T) {
	f := newFixture()
	prev := f.mount(List(Div(Span(Text("x"))), Text("tail")))
	live := f.doc.Live()

	next := List(Text("plain"), Text("tail"))
	f.p.Patch(next, prev, f.root())

	if got := f.html(); got != "plaintail" {
		t.Errorf("html = %q, want plaintail", got)
	}
	if got := f.rec.Count(host.OpReplace); got != 1 {
		t.Errorf("replaces = %d, want 1", got)
	}
	// div, span and text are gone; one text node was added.
	if got := f.doc.Live(); got != live-2 {
		t.Errorf("Live() = %d, want %d", got, live-2)
	}
}

func TestTagChangeDiscardsSubtree(t *testing.T) {
	f := newFixture()
	prev := f.mount(Div(Class("old"), P(Text("a")), P(Text("b"))))
	oldHost := prev.Host
	oldChild := prev.Children[0].Host

	next := Span(Text("new"))
	f.p.Patch(next, prev, f.root())

	if got := f.html(); got != "<span>new</span>" {
		t.Errorf("html = %q", got)
	}
	if f.doc.IsLive(oldHost) && f.doc.Tag(oldHost) == "div" {
		t.Error("old div still live")
	}
	if f.doc.IsLive(oldChild) && f.doc.Parent(oldChild) != host.None {
		t.Error("old child still attached")
	}
	// root + span + text
	if got := f.doc.Live(); got != 3 {
		t.Errorf("Live() = %d, want 3 (leaked host nodes)", got)
	}
	if got := f.rec.Count(host.OpCreateElement); got != 1 {
		t.Errorf("element creations = %d, want 1", got)
	}
}

func TestAttributeDiff(t *testing.T) {
	f := newFixture()
	prev := f.mount(Div(Class("old"), ID("keep"), TitleAttr("gone")))

	next := Div(Class("new"), ID("keep"), Data("x", "1"))
	f.p.Patch(next, prev, f.root())

	h := next.Host
	want := []host.Op{
		{Kind: host.OpSetAttr, Handle: h, Name: "class", Value: "new"},
		{Kind: host.OpSetAttr, Handle: h, Name: "data-x", Value: "1"},
		{Kind: host.OpRemoveAttr, Handle: h, Name: "title"},
	}
	if diff := cmp.Diff(want, f.rec.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionalListDiff(t *testing.T) {
	items := func(n int, label string) *VNode {
		return Ul(Repeat(n, func(i int) *VNode {
			return Li(Textf("%s%d", label, i))
		}))
	}
	tests := []struct {
		oldN, newN int
	}{
		{0, 3}, {3, 0}, {2, 5}, {5, 2}, {4, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d->%d", tt.oldN, tt.newN), func(t *testing.T) {
			f := newFixture()
			prev := f.mount(items(tt.oldN, "old"))
			next := items(tt.newN, "new")
			f.p.Patch(next, prev, f.root())

			common := min(tt.oldN, tt.newN)
			if got := f.rec.Count(host.OpSetText); got != common {
				t.Errorf("patched positions = %d, want %d", got, common)
			}
			created := max(tt.newN-tt.oldN, 0)
			if got := f.rec.Count(host.OpCreateElement); got != created {
				t.Errorf("created = %d, want %d", got, created)
			}
			removed := max(tt.oldN-tt.newN, 0)
			if got := f.rec.Count(host.OpRemove); got != removed {
				t.Errorf("removed = %d, want %d", got, removed)
			}
			if got := len(f.doc.Children(next.Host)); got != tt.newN {
				t.Errorf("host children = %d, want %d", got, tt.newN)
			}
		})
	}
}

func TestKeysDoNotReorder(t *testing.T) {
	f := newFixture()
	prev := f.mount(Ul(Li(Key("a"), Text("a")), Li(Key("b"), Text("b"))))

	next := Ul(Li(Key("b"), Text("b")), Li(Key("a"), Text("a")))
	f.p.Patch(next, prev, f.root())

	// Position 0 had key a, now key b: keys differ, so each position is rebuilt.
	if got := f.rec.Count(host.OpReplace); got != 2 {
		t.Errorf("replaces = %d, want 2", got)
	}
	if got := f.html(); got != "<ul><li>b</li><li>a</li></ul>" {
		t.Errorf("html = %q", got)
	}
}

func TestListInsertKeepsSiblingOrder(t *testing.T) {
	f := newFixture()
	prev := f.mount(Div(Text("head"), List(Text("a")), Text("tail")))

	next := Div(Text("head"), List(Text("a"), Text("b"), Text("c")), Text("tail"))
	f.p.Patch(next, prev, f.root())

	if got := f.html(); got != "<div>headabctail</div>" {
		t.Errorf("html = %q", got)
	}
	if got := f.rec.Count(host.OpInsertBefore); got != 2 {
		t.Errorf("inserts = %d, want 2", got)
	}
}

func TestIfKeepsPositions(t *testing.T) {
	view := func(show bool) *VNode {
		return Div(If(show, P(Text("banner"))), Span(Text("body")))
	}
	f := newFixture()
	prev := f.mount(view(false))
	span := prev.Children[1].Host

	next := view(true)
	f.p.Patch(next, prev, f.root())

	if got := f.html(); got != "<div><p>banner</p><span>body</span></div>" {
		t.Errorf("html = %q", got)
	}
	if next.Children[1].Host != span {
		t.Error("span sibling was not reused")
	}

	hidden := view(false)
	f.p.Patch(hidden, next, f.root())
	if got := f.html(); got != "<div><span>body</span></div>" {
		t.Errorf("html after hide = %q", got)
	}
}

func TestKeyOverridesTagComparison(t *testing.T) {
	f := newFixture()
	prev := f.mount(Div(Key("same"), Class("a")))
	h := prev.Host

	next := Span(Key("same"), Class("b"))
	f.p.Patch(next, prev, f.root())

	if next.Host != h {
		t.Fatalf("keyed element not reused: host %v, want %v", next.Host, h)
	}
	// The host element keeps its original tag: keys promise interchangeability.
	if got := f.doc.Tag(h); got != "div" {
		t.Errorf("host tag = %q, want div", got)
	}
	if got := f.rec.Count(host.OpCreateElement); got != 0 {
		t.Errorf("created = %d, want 0", got)
	}
}

func TestKeyMismatchReplaces(t *testing.T) {
	f := newFixture()
	prev := f.mount(Div(Key("a")))
	next := Div(Key("b"))
	f.p.Patch(next, prev, f.root())
	if next.Host == prev.Host || f.rec.Count(host.OpReplace) != 1 {
		t.Errorf("key change did not replace: ops %v", f.rec.Ops())
	}
}

func TestListenerRebind(t *testing.T) {
	f := newFixture()
	var calls []string
	cb := func(name string) host.Callback {
		return func(host.Event) { calls = append(calls, name) }
	}

	prev := f.mount(Button(OnClick(cb("first"))))
	h := prev.Host

	next := Button(OnClick(cb("second")))
	f.p.Patch(next, prev, f.root())
	if n := f.rec.Len(); n != 0 {
		t.Errorf("same event types issued %d ops: %v", n, f.rec.Ops())
	}
	f.doc.Dispatch(h, host.Event{Type: "click"})
	if diff := cmp.Diff([]string{"second"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	third := Button(OnInput(cb("input")))
	f.p.Patch(third, next, f.root())
	if f.rec.Count(host.OpDetach) != 1 || f.rec.Count(host.OpAttach) != 1 {
		t.Errorf("changed event types: ops %v", f.rec.Ops())
	}
	if f.doc.Dispatch(h, host.Event{Type: "click"}) {
		t.Error("click listener survived rebind")
	}
	f.doc.Dispatch(h, host.Event{Type: "input"})
	if got := calls[len(calls)-1]; got != "input" {
		t.Errorf("last call = %q, want input", got)
	}
}

func TestVoidElementChildrenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for void element with children")
		}
	}()
	Input(Text("nope"))
}

func TestStampDepth(t *testing.T) {
	tree := Div(List(Span(), Text("x")), P())
	StampDepth(tree, 3)
	var walk func(n *VNode)
	walk = func(n *VNode) {
		if n.Depth != 3 {
			t.Errorf("%s depth = %d, want 3", n.Kind, n.Depth)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree)
}

func TestFirstAndLastHost(t *testing.T) {
	f := newFixture()
	tree := f.mount(List(List(), Text("a"), Div(), List()))
	if got, want := FirstHost(tree), tree.Children[1].Host; got != want {
		t.Errorf("FirstHost() = %v, want %v", got, want)
	}
	if got, want := LastHost(tree), tree.Children[2].Host; got != want {
		t.Errorf("LastHost() = %v, want %v", got, want)
	}
	if FirstHost(List()) != host.None || LastHost(nil) != host.None {
		t.Error("empty lists should own no host node")
	}
}

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindText, "Text"},
		{KindElement, "Element"},
		{KindList, "List"},
		{KindComponent, "Component"},
		{VKind(255), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionBefore(t *testing.T) {
	f := newFixture()
	tail := Span()
	outerTail := Text("z")
	tree := Div(List(List(), Text("a"), tail), outerTail)
	f.mount(tree)
	inner := tree.Children[0]

	listSlot := &Position{Following: tree.Children[1:]}
	tests := []struct {
		name string
		pos  *Position
		want host.Handle
	}{
		{"nil", nil, host.None},
		{"end", &Position{End: 42}, 42},
		{"next sibling", &Position{Following: inner.Children[1:], Outer: listSlot}, inner.Children[1].Host},
		{"skips empty siblings", &Position{Following: []*VNode{List(), tail}}, tail.Host},
		{"falls back to outer", &Position{Outer: listSlot}, outerTail.Host},
		{"element children append", &Position{Following: []*VNode{List()}}, host.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.Before(); got != tt.want {
				t.Errorf("Before() = %v, want %v", got, tt.want)
			}
		})
	}
}
