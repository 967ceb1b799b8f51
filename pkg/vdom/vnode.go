package vdom

import "github.com/vango-dev/patchwork/pkg/host"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText      VKind = iota // Plain text node
	KindElement                // <div>, <button>, etc.
	KindList                   // Grouping without a host node
	KindComponent              // Component placeholder
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindList:
		return "List"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Attrs maps attribute names to values.
type Attrs map[string]string

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind
	Tag      string         // Element tag name
	Attrs    Attrs          // Element attributes
	Events   []EventHandler // Element event bindings, in declaration order
	Key      string         // Reconciliation key
	Text     string         // Text content
	Children []*VNode       // Element children or List items

	Comp      Mountable // Component to mount, for KindComponent
	PropsHash uint64    // Structural hash of component type and properties
	Mounted   Mounted   // Live instance once resolved

	Host  host.Handle // Owned host node, for KindText and KindElement
	Depth uint32      // Distance from the mount root, stamped before patching

	bindings []*binding
}

// WithKey sets the reconciliation key and returns the node.
func (v *VNode) WithKey(key string) *VNode {
	v.Key = key
	return v
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler binds a host event type to a callback.
type EventHandler struct {
	Event   string // "click", "input", ...
	Handler host.Callback
}

// binding is a live host listener. The host sees a stable closure that
// forwards to fn, so a reused element can retarget its listeners without
// touching the host.
type binding struct {
	event string
	id    host.ListenerHandle
	fn    host.Callback
}

func (b *binding) dispatch(e host.Event) {
	if b.fn != nil {
		b.fn(e)
	}
}

// Mountable is what a component placeholder knows about its component:
// a type name for diagnostics and how to construct and mount it.
type Mountable interface {
	TypeName() string
	Mount(ctx MountContext) Mounted
}

// MountContext tells a component where its first tree goes.
type MountContext struct {
	Patcher  *Patcher
	Scope    any
	Parent   host.Handle
	Before   host.Handle // Host node the component's nodes precede now; None appends
	Position *Position   // The component's slot, for later re-renders
	Depth    uint32
}

// Mounted is a live component instance owned by a placeholder.
type Mounted interface {
	// Tree returns the currently rendered tree.
	Tree() *VNode

	// Reanchor records the component's current slot. It is called whenever
	// a patch reuses the instance.
	Reanchor(parent host.Handle, pos *Position)

	// Discard marks the instance dead. Its tree has already been erased.
	Discard()
}

// Comp creates a component placeholder.
func Comp(m Mountable, propsHash uint64) *VNode {
	return &VNode{
		Kind:      KindComponent,
		Comp:      m,
		PropsHash: propsHash,
	}
}

// FirstHost returns the first host node owned by n or its descendants.
func FirstHost(n *VNode) host.Handle {
	if n == nil {
		return host.None
	}
	switch n.Kind {
	case KindText, KindElement:
		return n.Host
	case KindList:
		for _, c := range n.Children {
			if h := FirstHost(c); h != host.None {
				return h
			}
		}
	case KindComponent:
		if n.Mounted != nil {
			return FirstHost(n.Mounted.Tree())
		}
	}
	return host.None
}

// LastHost returns the last host node owned by n or its descendants.
func LastHost(n *VNode) host.Handle {
	if n == nil {
		return host.None
	}
	switch n.Kind {
	case KindText, KindElement:
		return n.Host
	case KindList:
		for i := len(n.Children) - 1; i >= 0; i-- {
			if h := LastHost(n.Children[i]); h != host.None {
				return h
			}
		}
	case KindComponent:
		if n.Mounted != nil {
			return LastHost(n.Mounted.Tree())
		}
	}
	return host.None
}

// StampDepth sets Depth on n and every node below it. It does not descend
// into mounted component trees; those are stamped by their own renders.
func StampDepth(n *VNode, depth uint32) {
	if n == nil {
		return
	}
	n.Depth = depth
	for _, c := range n.Children {
		StampDepth(c, depth)
	}
}
