package host

// OpKind identifies a recorded host mutation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota + 1
	OpCreateText
	OpSetText
	OpSetAttr
	OpRemoveAttr
	OpAppend
	OpInsertBefore
	OpReplace
	OpRemove
	OpAttach
	OpDetach
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpAppend:
		return "Append"
	case OpInsertBefore:
		return "InsertBefore"
	case OpReplace:
		return "Replace"
	case OpRemove:
		return "Remove"
	case OpAttach:
		return "Attach"
	case OpDetach:
		return "Detach"
	default:
		return "Unknown"
	}
}

// Op is one recorded host mutation. Fields not meaningful for a kind are zero.
type Op struct {
	Kind   OpKind `json:"op"`
	Handle Handle `json:"h,omitempty"`
	Parent Handle `json:"p,omitempty"`
	Ref    Handle `json:"r,omitempty"`
	Name   string `json:"n,omitempty"` // tag, attribute name or event type
	Value  string `json:"v,omitempty"`
}

// Recorder forwards every call to an underlying Renderer and logs the
// mutations it performs. Queries (NextSibling) are not logged.
type Recorder struct {
	Renderer
	ops []Op
}

var _ Renderer = (*Recorder)(nil)

// NewRecorder wraps r.
func NewRecorder(r Renderer) *Recorder {
	return &Recorder{Renderer: r}
}

// Ops returns the operations recorded since the last Reset.
func (r *Recorder) Ops() []Op {
	return r.ops
}

// Reset clears the log and returns what it held.
func (r *Recorder) Reset() []Op {
	ops := r.ops
	r.ops = nil
	return ops
}

// Count returns how many recorded ops have the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of recorded ops.
func (r *Recorder) Len() int {
	return len(r.ops)
}

func (r *Recorder) log(op Op) {
	r.ops = append(r.ops, op)
}

func (r *Recorder) CreateElement(tag string) Handle {
	h := r.Renderer.CreateElement(tag)
	r.log(Op{Kind: OpCreateElement, Handle: h, Name: tag})
	return h
}

func (r *Recorder) CreateText(content string) Handle {
	h := r.Renderer.CreateText(content)
	r.log(Op{Kind: OpCreateText, Handle: h, Value: content})
	return h
}

func (r *Recorder) SetText(h Handle, content string) {
	r.Renderer.SetText(h, content)
	r.log(Op{Kind: OpSetText, Handle: h, Value: content})
}

func (r *Recorder) SetAttribute(h Handle, name, value string) {
	r.Renderer.SetAttribute(h, name, value)
	r.log(Op{Kind: OpSetAttr, Handle: h, Name: name, Value: value})
}

func (r *Recorder) RemoveAttribute(h Handle, name string) {
	r.Renderer.RemoveAttribute(h, name)
	r.log(Op{Kind: OpRemoveAttr, Handle: h, Name: name})
}

func (r *Recorder) AppendChild(parent, child Handle) {
	r.Renderer.AppendChild(parent, child)
	r.log(Op{Kind: OpAppend, Handle: child, Parent: parent})
}

func (r *Recorder) InsertBefore(parent, child, ref Handle) {
	r.Renderer.InsertBefore(parent, child, ref)
	r.log(Op{Kind: OpInsertBefore, Handle: child, Parent: parent, Ref: ref})
}

func (r *Recorder) ReplaceChild(parent, old, replacement Handle) {
	r.Renderer.ReplaceChild(parent, old, replacement)
	r.log(Op{Kind: OpReplace, Handle: replacement, Parent: parent, Ref: old})
}

func (r *Recorder) RemoveChild(parent, child Handle) {
	r.Renderer.RemoveChild(parent, child)
	r.log(Op{Kind: OpRemove, Handle: child, Parent: parent})
}

func (r *Recorder) AttachListener(h Handle, eventType string, cb Callback) ListenerHandle {
	l := r.Renderer.AttachListener(h, eventType, cb)
	r.log(Op{Kind: OpAttach, Handle: h, Name: eventType, Ref: Handle(l)})
	return l
}

func (r *Recorder) DetachListener(l ListenerHandle) {
	r.Renderer.DetachListener(l)
	r.log(Op{Kind: OpDetach, Ref: Handle(l)})
}

// Root forwards to the underlying renderer when it is a Finder.
func (r *Recorder) Root() Handle {
	if f, ok := r.Renderer.(Finder); ok {
		return f.Root()
	}
	return None
}

// ElementByID forwards to the underlying renderer when it is a Finder.
func (r *Recorder) ElementByID(id string) Handle {
	if f, ok := r.Renderer.(Finder); ok {
		return f.ElementByID(id)
	}
	return None
}
