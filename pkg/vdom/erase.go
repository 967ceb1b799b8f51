package vdom

import "github.com/vango-dev/patchwork/pkg/host"

// Erase removes every host node owned by n from parent and discards every
// component mounted below it. n is left without host handles.
func (p *Patcher) Erase(n *VNode, parent host.Handle) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText, KindElement:
		if n.Host != host.None {
			p.Host.RemoveChild(parent, n.Host)
			n.Host = host.None
		}
		// The host released the subtree with the node; only virtual
		// bookkeeping is left.
		p.release(n)
	case KindList:
		for _, c := range n.Children {
			p.Erase(c, parent)
		}
	case KindComponent:
		if m := n.Mounted; m != nil {
			n.Mounted = nil
			p.Erase(m.Tree(), parent)
			m.Discard()
		}
	}
}

// release drops virtual ownership below n after the host has already
// detached and released the corresponding nodes. It issues no host calls.
func (p *Patcher) release(n *VNode) {
	if n == nil {
		return
	}
	n.Host = host.None
	n.bindings = nil
	switch n.Kind {
	case KindElement, KindList:
		for _, c := range n.Children {
			p.release(c)
		}
	case KindComponent:
		if m := n.Mounted; m != nil {
			n.Mounted = nil
			p.release(m.Tree())
			m.Discard()
		}
	}
}
