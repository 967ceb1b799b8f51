package vdom

import "github.com/vango-dev/patchwork/pkg/host"

// Position is a slot in a host child list, described by the virtual nodes
// that follow it rather than by a host handle. Siblings can replace their
// host nodes between renders, so the node a slot precedes is looked up
// when it is needed.
type Position struct {
	// Following are the later nodes of the same virtual sequence.
	Following []*VNode

	// Outer is the slot of the enclosing List or component tree, consulted
	// when nothing in Following owns a host node.
	Outer *Position

	// End is the host node an outermost slot precedes. None appends.
	End host.Handle
}

// Before returns the host node that content at p must be inserted before,
// or None to append.
func (p *Position) Before() host.Handle {
	for p != nil {
		for _, n := range p.Following {
			if h := FirstHost(n); h != host.None {
				return h
			}
		}
		if p.Outer == nil {
			return p.End
		}
		p = p.Outer
	}
	return host.None
}
