package vango

import (
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// State is the lifecycle state of a mounted node.
type State uint8

const (
	StateUnmounted State = iota // Constructed, never rendered
	StateIdle                   // Rendered, nothing queued
	StatePending                // A re-render is queued
	StateDiscarded              // Removed from the tree; never renders again
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "Unmounted"
	case StateIdle:
		return "Idle"
	case StatePending:
		return "Pending"
	case StateDiscarded:
		return "Discarded"
	default:
		return "Unknown"
	}
}

// Node is a live component instance. It owns the tree its last render
// produced and knows where in the host that tree sits.
type Node struct {
	id      uint64
	name    string
	sched   *Scheduler
	patcher *vdom.Patcher
	drv     driver

	tree  *vdom.VNode
	depth uint32
	state State

	// Host position. pos is owned by n so slots inside its tree can chain
	// to it; a parent patch that adopts n overwrites it in place.
	parent host.Handle
	pos    vdom.Position

	renders int
}

// ID returns the node's runtime-unique id.
func (n *Node) ID() uint64 { return n.id }

// Name returns the component type name.
func (n *Node) Name() string { return n.name }

// Depth returns the node's distance from the root component.
func (n *Node) Depth() uint32 { return n.depth }

// State returns the lifecycle state.
func (n *Node) State() State { return n.state }

// Renders returns how many times View has run.
func (n *Node) Renders() int { return n.renders }

// Tree returns the currently rendered tree.
func (n *Node) Tree() *vdom.VNode { return n.tree }

// Reanchor records n's slot after a parent patch adopted it.
func (n *Node) Reanchor(parent host.Handle, pos *vdom.Position) {
	n.parent = parent
	n.pos = vdom.Position{}
	if pos != nil {
		n.pos = *pos
	}
}

// Discard marks n dead. Queued messages are still delivered, but n never
// renders again.
func (n *Node) Discard() {
	n.state = StateDiscarded
	n.tree = nil
}

// ApplyUpdate runs the component's Update and reports whether a re-render
// was requested. Discarded nodes still receive messages.
func (n *Node) ApplyUpdate(msg any) bool {
	return n.drv.update(msg)
}

// Rerender renders the current state and patches it against the previous
// tree in place.
func (n *Node) Rerender() {
	if n.state == StateDiscarded {
		return
	}
	n.render(n.tree, n.before(n.tree))
}

// before returns the host node that follows tree, looking past it to the
// following siblings when tree owns no host node.
func (n *Node) before(tree *vdom.VNode) host.Handle {
	if last := vdom.LastHost(tree); last != host.None {
		return n.patcher.Host.NextSibling(last)
	}
	return n.pos.Before()
}

// mount renders n for the first time. before is where its nodes go now;
// pos is its slot for later renders, nil for a fixed position.
func (n *Node) mount(parent, before host.Handle, pos *vdom.Position) {
	n.Reanchor(parent, pos)
	if pos == nil {
		n.pos.End = before
	}
	n.render(nil, before)
}

func (n *Node) render(prev *vdom.VNode, before host.Handle) {
	next := n.drv.view()
	vdom.StampDepth(next, n.depth+1)
	n.tree = next
	n.renders++
	n.state = StateIdle
	n.patcher.PatchAt(next, prev, n.parent, before, &n.pos)
}

// replace renders n in place of old, reusing whatever host nodes old's
// tree can donate, then discards old.
func (n *Node) replace(old *Node, parent host.Handle) {
	n.parent, n.pos = parent, old.pos
	before := old.before(old.tree)
	prev := old.tree
	old.tree = nil
	n.render(prev, before)
	old.Discard()
}

// erase removes n's host nodes and discards it with every nested instance.
func (n *Node) erase() {
	if n.state == StateDiscarded {
		return
	}
	n.patcher.Erase(n.tree, n.parent)
	n.Discard()
}
