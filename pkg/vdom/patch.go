package vdom

import (
	"sort"

	"github.com/vango-dev/patchwork/pkg/host"
)

// Patcher reconciles virtual trees against a host surface.
type Patcher struct {
	Host host.Renderer

	// Scope is handed to every Mountable through MountContext.Scope. The
	// component runtime stores its scheduler here.
	Scope any
}

// NewPatcher creates a Patcher driving r.
func NewPatcher(r host.Renderer) *Patcher {
	return &Patcher{Host: r}
}

// Patch reconciles next against prev under parent. prev is consumed: host
// handles it owned are moved into next or released. A nil prev mounts next
// fresh, appending its nodes to parent.
func (p *Patcher) Patch(next, prev *VNode, parent host.Handle) {
	p.PatchBefore(next, prev, parent, host.None)
}

// PatchBefore is Patch with an insertion anchor: any host node created at
// this position is inserted before the host node before (None appends).
func (p *Patcher) PatchBefore(next, prev *VNode, parent, before host.Handle) {
	p.PatchAt(next, prev, parent, before, &Position{End: before})
}

// PatchAt is PatchBefore for content that sits at pos. Components mounted
// or adopted inside next remember their slot relative to pos, so they can
// find their insertion point again when they re-render on their own.
func (p *Patcher) PatchAt(next, prev *VNode, parent, before host.Handle, pos *Position) {
	if next == prev {
		return
	}
	if next == nil {
		p.Erase(prev, parent)
		return
	}

	switch next.Kind {
	case KindText:
		p.patchText(next, prev, parent, before)
	case KindElement:
		p.patchElement(next, prev, parent, before)
	case KindList:
		p.patchList(next, prev, parent, before, pos)
	case KindComponent:
		p.patchComponent(next, prev, parent, before, pos)
	}
}

// patchText updates a text node in place when the previous node was text.
func (p *Patcher) patchText(next, prev *VNode, parent, before host.Handle) {
	if prev != nil && prev.Kind == KindText && prev.Host != host.None {
		next.Host = prev.Host
		prev.Host = host.None
		if next.Text != prev.Text {
			p.Host.SetText(next.Host, next.Text)
		}
		return
	}

	next.Host = p.Host.CreateText(next.Text)
	p.place(next.Host, prev, parent, before)
}

// patchElement reuses the previous host element when tags (or keys) match,
// otherwise builds a detached replacement and swaps it in.
func (p *Patcher) patchElement(next, prev *VNode, parent, before host.Handle) {
	if prev != nil && prev.Kind == KindElement && prev.Host != host.None && sameElement(next, prev) {
		next.Host = prev.Host
		prev.Host = host.None
		p.diffAttrs(next, prev)
		p.rebind(next, prev)
		p.patchChildren(next.Children, prev.Children, next.Host, host.None, nil)
		prev.Children = nil
		return
	}

	h := p.Host.CreateElement(next.Tag)
	next.Host = h
	for _, name := range sortedKeys(next.Attrs) {
		p.Host.SetAttribute(h, name, next.Attrs[name])
	}
	p.bind(next)
	p.patchChildren(next.Children, nil, h, host.None, nil)
	p.place(h, prev, parent, before)
}

// patchList diffs list items against the previous list in place. Lists own
// no host node; their items are children of parent.
func (p *Patcher) patchList(next, prev *VNode, parent, before host.Handle, pos *Position) {
	if prev != nil && prev.Kind == KindList && keysCompatible(next.Key, prev.Key) {
		p.patchChildren(next.Children, prev.Children, parent, before, pos)
		prev.Children = nil
		return
	}

	p.Erase(prev, parent)
	p.patchChildren(next.Children, nil, parent, before, pos)
}

// patchComponent adopts the previous mounted instance unchanged when keys or
// property hashes match, otherwise mounts a fresh instance.
func (p *Patcher) patchComponent(next, prev *VNode, parent, before host.Handle, pos *Position) {
	if prev != nil && prev.Kind == KindComponent && prev.Mounted != nil && sameComponent(next, prev) {
		next.Mounted = prev.Mounted
		prev.Mounted = nil
		next.Mounted.Reanchor(parent, pos)
		return
	}

	p.Erase(prev, parent)
	next.Mounted = next.Comp.Mount(MountContext{
		Patcher:  p,
		Scope:    p.Scope,
		Parent:   parent,
		Before:   before,
		Position: pos,
		Depth:    next.Depth,
	})
}

// patchChildren diffs two sequences positionally. New nodes at position i
// are inserted before the first host node still owned by prev[i+1:], which
// keeps host order aligned with virtual order. outer is the slot of the
// whole sequence; it is nil for the children of an element.
func (p *Patcher) patchChildren(next, prev []*VNode, parent, before host.Handle, outer *Position) {
	for i, child := range next {
		var old *VNode
		if i < len(prev) {
			old = prev[i]
		}
		pos := &Position{Following: next[i+1:], Outer: outer}
		p.PatchAt(child, old, parent, firstHostAfter(prev, i+1, before), pos)
	}
	for i := len(next); i < len(prev); i++ {
		p.Erase(prev[i], parent)
	}
}

// place puts a freshly created host node where prev used to be. A single
// previous host node is replaced in one host call; anything else is erased
// and the new node inserted at the anchor.
func (p *Patcher) place(h host.Handle, prev *VNode, parent, before host.Handle) {
	if prev != nil && (prev.Kind == KindText || prev.Kind == KindElement) && prev.Host != host.None {
		p.Host.ReplaceChild(parent, prev.Host, h)
		prev.Host = host.None
		p.release(prev)
		return
	}
	p.Erase(prev, parent)
	host.Insert(p.Host, parent, h, before)
}

// diffAttrs sets new and changed attributes and removes dropped ones.
func (p *Patcher) diffAttrs(next, prev *VNode) {
	for _, name := range sortedKeys(next.Attrs) {
		value := next.Attrs[name]
		if old, ok := prev.Attrs[name]; !ok || old != value {
			p.Host.SetAttribute(next.Host, name, value)
		}
	}
	for _, name := range sortedKeys(prev.Attrs) {
		if _, ok := next.Attrs[name]; !ok {
			p.Host.RemoveAttribute(next.Host, name)
		}
	}
}

// bind attaches a host listener for every event binding of n.
func (p *Patcher) bind(n *VNode) {
	if len(n.Events) == 0 {
		return
	}
	n.bindings = make([]*binding, len(n.Events))
	for i, ev := range n.Events {
		b := &binding{event: ev.Event, fn: ev.Handler}
		b.id = p.Host.AttachListener(n.Host, ev.Event, b.dispatch)
		n.bindings[i] = b
	}
}

// rebind moves listeners from prev to next. When the sequence of event types
// is unchanged only the callback targets are swapped; otherwise the old
// listeners are detached and new ones attached.
func (p *Patcher) rebind(next, prev *VNode) {
	if sameEvents(next.Events, prev.bindings) {
		for i, b := range prev.bindings {
			b.fn = next.Events[i].Handler
		}
		next.bindings = prev.bindings
		prev.bindings = nil
		return
	}
	for _, b := range prev.bindings {
		p.Host.DetachListener(b.id)
	}
	prev.bindings = nil
	p.bind(next)
}

func sameEvents(events []EventHandler, bindings []*binding) bool {
	if len(events) != len(bindings) {
		return false
	}
	for i, ev := range events {
		if bindings[i].event != ev.Event {
			return false
		}
	}
	return true
}

// keysCompatible reports whether two keys allow reuse: both empty or equal.
func keysCompatible(a, b string) bool {
	return a == b
}

// sameElement decides element reuse. Equal non-empty keys short-circuit the
// tag comparison.
func sameElement(next, prev *VNode) bool {
	if !keysCompatible(next.Key, prev.Key) {
		return false
	}
	if next.Key != "" {
		return true
	}
	return next.Tag == prev.Tag
}

// sameComponent decides instance reuse. Equal non-empty keys short-circuit
// the property hash comparison.
func sameComponent(next, prev *VNode) bool {
	if !keysCompatible(next.Key, prev.Key) {
		return false
	}
	if next.Key != "" {
		return true
	}
	return next.PropsHash == prev.PropsHash
}

// firstHostAfter returns the first host node owned by nodes[from:], or
// fallback when none owns one.
func firstHostAfter(nodes []*VNode, from int, fallback host.Handle) host.Handle {
	for i := from; i < len(nodes); i++ {
		if h := FirstHost(nodes[i]); h != host.None {
			return h
		}
	}
	return fallback
}

func sortedKeys(attrs Attrs) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
