package vdom

import (
	"testing"

	"github.com/vango-dev/patchwork/pkg/host"
)

// stubComp mounts a fixed render function and counts constructions.
type stubComp struct {
	name   string
	render func() *VNode
	mounts *int
}

func (s *stubComp) TypeName() string { return s.name }

func (s *stubComp) Mount(ctx MountContext) Mounted {
	*s.mounts++
	m := &stubMounted{tree: s.render(), depth: ctx.Depth}
	m.Reanchor(ctx.Parent, ctx.Position)
	StampDepth(m.tree, ctx.Depth+1)
	ctx.Patcher.PatchAt(m.tree, nil, ctx.Parent, ctx.Before, &m.pos)
	return m
}

type stubMounted struct {
	tree      *VNode
	parent    host.Handle
	pos       Position
	depth     uint32
	discarded bool
}

func (m *stubMounted) Tree() *VNode { return m.tree }

func (m *stubMounted) Reanchor(parent host.Handle, pos *Position) {
	m.parent, m.pos = parent, *pos
}

func (m *stubMounted) Discard() { m.discarded = true }

func stub(name string, hash uint64, mounts *int, text string) *VNode {
	return Comp(&stubComp{
		name:   name,
		mounts: mounts,
		render: func() *VNode { return Div(Class(name), Text(text)) },
	}, hash)
}

func TestComponentSameHashAdopts(t *testing.T) {
	f := newFixture()
	var mounts int
	prev := f.mount(Div(stub("counter", 7, &mounts, "v1")))
	mounted := prev.Children[0].Mounted

	next := Div(stub("counter", 7, &mounts, "v2"))
	f.p.Patch(next, prev, f.root())

	if mounts != 1 {
		t.Errorf("mounts = %d, want 1 (constructor re-invoked)", mounts)
	}
	if next.Children[0].Mounted != mounted {
		t.Error("mounted instance not adopted")
	}
	if prev.Children[0].Mounted != nil {
		t.Error("old placeholder still owns the instance")
	}
	// View is not re-invoked: the text from the first render survives.
	if got := f.html(); got != `<div><div class="counter">v1</div></div>` {
		t.Errorf("html = %q", got)
	}
	if f.rec.Len() != 0 {
		t.Errorf("adoption issued host ops: %v", f.rec.Ops())
	}
}

func TestComponentHashChangeRemounts(t *testing.T) {
	f := newFixture()
	var mounts int
	prev := f.mount(Div(stub("counter", 1, &mounts, "v1"), Span(Text("after"))))
	old := prev.Children[0].Mounted.(*stubMounted)

	next := Div(stub("counter", 2, &mounts, "v2"), Span(Text("after")))
	f.p.Patch(next, prev, f.root())

	if mounts != 2 {
		t.Errorf("mounts = %d, want 2", mounts)
	}
	if !old.discarded {
		t.Error("old instance not discarded")
	}
	if got := f.html(); got != `<div><div class="counter">v2</div><span>after</span></div>` {
		t.Errorf("html = %q", got)
	}
	// root, outer div, component div + text, span + text
	if got := f.doc.Live(); got != 6 {
		t.Errorf("Live() = %d, want 6", got)
	}
}

func TestComponentKeyOverridesHash(t *testing.T) {
	f := newFixture()
	var mounts int
	prev := f.mount(List(stub("a", 1, &mounts, "first").WithKey("slot")))
	mounted := prev.Children[0].Mounted

	// Different type and hash, same key: treated as the same logical node.
	next := List(stub("b", 99, &mounts, "second").WithKey("slot"))
	f.p.Patch(next, prev, f.root())

	if mounts != 1 || next.Children[0].Mounted != mounted {
		t.Errorf("keyed component not adopted: mounts=%d", mounts)
	}
}

func TestComponentReplacedByText(t *testing.T) {
	f := newFixture()
	var mounts int
	prev := f.mount(List(stub("a", 1, &mounts, "x"), Text("tail")))
	old := prev.Children[0].Mounted.(*stubMounted)

	next := List(Text("plain"), Text("tail"))
	f.p.Patch(next, prev, f.root())

	if !old.discarded {
		t.Error("component not discarded")
	}
	if got := f.html(); got != "plaintail" {
		t.Errorf("html = %q", got)
	}
}

func TestEraseDiscardsNestedComponents(t *testing.T) {
	f := newFixture()
	var mounts int
	inner := stub("inner", 1, &mounts, "deep")
	prev := f.mount(Section(Div(inner)))
	m := inner.Mounted.(*stubMounted)

	f.p.Erase(prev, f.root())

	if !m.discarded {
		t.Error("nested component not discarded")
	}
	if got := f.doc.Live(); got != 1 {
		t.Errorf("Live() = %d, want 1", got)
	}
	// Only the top host node needs a host call.
	if got := f.rec.Count(host.OpRemove); got != 1 {
		t.Errorf("removes = %d, want 1", got)
	}
}

func TestComponentMountAnchor(t *testing.T) {
	f := newFixture()
	var mounts int
	prev := f.mount(Div(List(), Text("tail")))

	next := Div(List(stub("c", 1, &mounts, "mid")), Text("tail"))
	StampDepth(next, 4)
	f.p.Patch(next, prev, f.root())

	if got := f.html(); got != `<div><div class="c">mid</div>tail</div>` {
		t.Errorf("html = %q", got)
	}
	m := next.Children[0].Children[0].Mounted.(*stubMounted)
	if m.depth != 4 {
		t.Errorf("mount depth = %d, want 4", m.depth)
	}
	if got := m.pos.Before(); got != next.Children[1].Host {
		t.Errorf("slot anchor = %v, want tail text %v", got, next.Children[1].Host)
	}
}
