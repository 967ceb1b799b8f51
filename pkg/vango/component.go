package vango

import (
	"reflect"
	"sync/atomic"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Component is the contract a component author implements. M is the
// component's message type.
type Component[M any] interface {
	// Update applies msg to the component's state and reports whether the
	// component needs to re-render.
	Update(msg M) bool

	// View renders the current state. It must not mutate state.
	View(b *Behavior[M]) *vdom.VNode
}

var nextTypeID atomic.Uint64

// Def is a defined component type. Its identity is fixed at Define time, so
// two definitions never share placeholder hashes even when their names or
// property types coincide.
type Def[P, M any] struct {
	name string
	id   uint64
	ctor func(props P) Component[M]
}

// Define registers a component type. ctor builds a fresh instance from the
// properties a parent passes to New.
func Define[P, M any](name string, ctor func(props P) Component[M]) *Def[P, M] {
	return &Def[P, M]{
		name: name,
		id:   nextTypeID.Add(1),
		ctor: ctor,
	}
}

// Name returns the component's type name.
func (d *Def[P, M]) Name() string { return d.name }

// New returns a placeholder for an instance of d built from props. The
// instance is only constructed if the placeholder is not matched against a
// mounted one with equal properties.
func (d *Def[P, M]) New(props P) *vdom.VNode {
	return vdom.Comp(d.Root(props), hashProps(d.name, d.id, props))
}

// Root returns a root description for Runtime.MountRoot and Runtime.Handle.
func (d *Def[P, M]) Root(props P) Root {
	return &placeholder[P, M]{def: d, props: props}
}

// Root is a not-yet-constructed component that can be mounted at the top
// of a runtime.
type Root interface {
	vdom.Mountable
	construct(s *Scheduler, p *vdom.Patcher, depth uint32) *Node
}

// placeholder is the Mountable behind every KindComponent node.
type placeholder[P, M any] struct {
	def   *Def[P, M]
	props P
}

func (p *placeholder[P, M]) TypeName() string { return p.def.name }

// Mount constructs the instance and renders it into the host at the
// position the patcher chose.
func (p *placeholder[P, M]) Mount(ctx vdom.MountContext) vdom.Mounted {
	s, ok := ctx.Scope.(*Scheduler)
	if !ok {
		errors.Panic(errors.New(errors.CodeInternal).
			WithDetail("%s mounted outside a runtime (scope %T)", p.def.name, ctx.Scope))
	}
	n := p.construct(s, ctx.Patcher, ctx.Depth)
	n.mount(ctx.Parent, ctx.Before, ctx.Position)
	return n
}

func (p *placeholder[P, M]) construct(s *Scheduler, patcher *vdom.Patcher, depth uint32) *Node {
	inst := &instance[M]{name: p.def.name, comp: p.def.ctor(p.props)}
	n := s.newNode(p.def.name, inst, patcher, depth)
	inst.behavior = &Behavior[M]{node: n}
	return n
}

// instance adapts a typed Component to the untyped Node.
type instance[M any] struct {
	name     string
	comp     Component[M]
	behavior *Behavior[M]
}

func (i *instance[M]) update(msg any) bool {
	m, ok := msg.(M)
	if !ok {
		errors.Panic(errors.New(errors.CodeTypeMismatch).
			WithDetail("%s expects %s, got %T", i.name, reflect.TypeOf((*M)(nil)).Elem(), msg))
	}
	return i.comp.Update(m)
}

func (i *instance[M]) view() *vdom.VNode {
	return i.comp.View(i.behavior)
}

// driver is the type-erased view of an instance.
type driver interface {
	update(msg any) bool
	view() *vdom.VNode
}
