package telemetry

import "github.com/vango-dev/patchwork/pkg/host"

// Renderer counts host mutations by operation and forwards them.
type Renderer struct {
	host.Renderer
	metrics *Metrics
}

var (
	_ host.Renderer = (*Renderer)(nil)
	_ host.Finder   = (*Renderer)(nil)
)

// Instrument wraps r. Queries are forwarded uncounted.
func (m *Metrics) Instrument(r host.Renderer) *Renderer {
	return &Renderer{Renderer: r, metrics: m}
}

func (r *Renderer) record(k host.OpKind) {
	r.metrics.RecordHostOp(k.String())
}

func (r *Renderer) CreateElement(tag string) host.Handle {
	r.record(host.OpCreateElement)
	return r.Renderer.CreateElement(tag)
}

func (r *Renderer) CreateText(content string) host.Handle {
	r.record(host.OpCreateText)
	return r.Renderer.CreateText(content)
}

func (r *Renderer) SetText(h host.Handle, content string) {
	r.record(host.OpSetText)
	r.Renderer.SetText(h, content)
}

func (r *Renderer) SetAttribute(h host.Handle, name, value string) {
	r.record(host.OpSetAttr)
	r.Renderer.SetAttribute(h, name, value)
}

func (r *Renderer) RemoveAttribute(h host.Handle, name string) {
	r.record(host.OpRemoveAttr)
	r.Renderer.RemoveAttribute(h, name)
}

func (r *Renderer) AppendChild(parent, child host.Handle) {
	r.record(host.OpAppend)
	r.Renderer.AppendChild(parent, child)
}

func (r *Renderer) InsertBefore(parent, child, ref host.Handle) {
	r.record(host.OpInsertBefore)
	r.Renderer.InsertBefore(parent, child, ref)
}

func (r *Renderer) ReplaceChild(parent, old, replacement host.Handle) {
	r.record(host.OpReplace)
	r.Renderer.ReplaceChild(parent, old, replacement)
}

func (r *Renderer) RemoveChild(parent, child host.Handle) {
	r.record(host.OpRemove)
	r.Renderer.RemoveChild(parent, child)
}

func (r *Renderer) AttachListener(h host.Handle, eventType string, cb host.Callback) host.ListenerHandle {
	r.record(host.OpAttach)
	return r.Renderer.AttachListener(h, eventType, cb)
}

func (r *Renderer) DetachListener(l host.ListenerHandle) {
	r.record(host.OpDetach)
	r.Renderer.DetachListener(l)
}

// Root forwards to the underlying renderer when it is a Finder.
func (r *Renderer) Root() host.Handle {
	if f, ok := r.Renderer.(host.Finder); ok {
		return f.Root()
	}
	return host.None
}

// ElementByID forwards to the underlying renderer when it is a Finder.
func (r *Renderer) ElementByID(id string) host.Handle {
	if f, ok := r.Renderer.(host.Finder); ok {
		return f.ElementByID(id)
	}
	return host.None
}
