package host

// Handle addresses a live host node. Handles are stable indices into the
// renderer's node arena; the zero Handle means "no node".
type Handle uint32

// ListenerHandle addresses an attached event listener. Zero means none.
type ListenerHandle uint32

// None is the zero Handle.
const None Handle = 0

// Event is delivered to listeners when a host event fires.
type Event struct {
	Type   string // "click", "input", ...
	Target Handle // Node the listener was attached to
	Value  string // Current value for input-like events
}

// Callback receives host events.
type Callback func(Event)

// Renderer is the thin host-surface binding the reconciliation engine drives.
// Implementations perform no diffing of their own.
type Renderer interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) Handle

	// CreateText creates a detached text node.
	CreateText(content string) Handle

	// SetText replaces the content of a text node in place.
	SetText(h Handle, content string)

	SetAttribute(h Handle, name, value string)
	RemoveAttribute(h Handle, name string)

	// AppendChild appends child as the last child of parent.
	AppendChild(parent, child Handle)

	// InsertBefore inserts child before ref. A zero ref appends.
	InsertBefore(parent, child, ref Handle)

	// ReplaceChild swaps old for replacement. The detached old subtree is released.
	ReplaceChild(parent, old, replacement Handle)

	// RemoveChild detaches child. The detached subtree is released.
	RemoveChild(parent, child Handle)

	// NextSibling returns the node following h under its parent, or None.
	NextSibling(h Handle) Handle

	AttachListener(h Handle, eventType string, cb Callback) ListenerHandle
	DetachListener(l ListenerHandle)
}

// Finder is implemented by renderers that can locate mount points.
type Finder interface {
	// Root returns the top-level container node.
	Root() Handle

	// ElementByID returns the element whose id attribute equals id, or None.
	ElementByID(id string) Handle
}

// Insert places child before ref, or appends it when ref is None.
func Insert(r Renderer, parent, child, ref Handle) {
	if ref == None {
		r.AppendChild(parent, child)
		return
	}
	r.InsertBefore(parent, child, ref)
}
