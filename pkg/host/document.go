package host

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

type nodeKind uint8

const (
	nodeFree nodeKind = iota
	nodeElement
	nodeText
)

type docNode struct {
	kind      nodeKind
	tag       string
	text      string
	attrs     map[string]string
	parent    Handle
	children  []Handle
	listeners []ListenerHandle
}

type docListener struct {
	node      Handle
	eventType string
	cb        Callback
}

// Document is an in-memory Renderer. Nodes live in an arena addressed by
// Handle; detaching a subtree returns its slots (and listeners) to a free list.
//
// A Document is not safe for concurrent use. It is owned by the single
// goroutine that drives the scheduler.
type Document struct {
	nodes     []docNode
	free      []Handle
	listeners []docListener
	freeL     []ListenerHandle
	root      Handle
	live      int
}

var (
	_ Renderer = (*Document)(nil)
	_ Finder   = (*Document)(nil)
)

// NewDocument creates a Document whose root is an element with the given tag.
func NewDocument(rootTag string) *Document {
	d := &Document{
		// Slot 0 is reserved so the zero Handle never addresses a node.
		nodes:     make([]docNode, 1, 64),
		listeners: make([]docListener, 1, 16),
	}
	d.root = d.alloc(docNode{kind: nodeElement, tag: rootTag})
	return d
}

func (d *Document) alloc(n docNode) Handle {
	d.live++
	if k := len(d.free); k > 0 {
		h := d.free[k-1]
		d.free = d.free[:k-1]
		d.nodes[h] = n
		return h
	}
	d.nodes = append(d.nodes, n)
	return Handle(len(d.nodes) - 1)
}

func (d *Document) get(h Handle) *docNode {
	if h == None || int(h) >= len(d.nodes) || d.nodes[h].kind == nodeFree {
		panic(fmt.Sprintf("host: invalid handle %d", h))
	}
	return &d.nodes[h]
}

// release frees h and its whole subtree.
func (d *Document) release(h Handle) {
	n := d.get(h)
	for _, c := range n.children {
		d.release(c)
	}
	for _, l := range n.listeners {
		d.freeListener(l)
	}
	d.nodes[h] = docNode{}
	d.free = append(d.free, h)
	d.live--
}

func (d *Document) freeListener(l ListenerHandle) {
	if l == 0 || int(l) >= len(d.listeners) || d.listeners[l].node == None {
		return
	}
	d.listeners[l] = docListener{}
	d.freeL = append(d.freeL, l)
}

func (d *Document) detach(parent, child Handle) int {
	p := d.get(parent)
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			d.get(child).parent = None
			return i
		}
	}
	panic(fmt.Sprintf("host: node %d is not a child of %d", child, parent))
}

// CreateElement implements Renderer.
func (d *Document) CreateElement(tag string) Handle {
	return d.alloc(docNode{kind: nodeElement, tag: tag})
}

// CreateText implements Renderer.
func (d *Document) CreateText(content string) Handle {
	return d.alloc(docNode{kind: nodeText, text: content})
}

// SetText implements Renderer.
func (d *Document) SetText(h Handle, content string) {
	d.get(h).text = content
}

// SetAttribute implements Renderer.
func (d *Document) SetAttribute(h Handle, name, value string) {
	n := d.get(h)
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// RemoveAttribute implements Renderer.
func (d *Document) RemoveAttribute(h Handle, name string) {
	delete(d.get(h).attrs, name)
}

// AppendChild implements Renderer.
func (d *Document) AppendChild(parent, child Handle) {
	c := d.get(child)
	if c.parent != None {
		d.detach(c.parent, child)
	}
	p := d.get(parent)
	p.children = append(p.children, child)
	d.nodes[child].parent = parent
}

// InsertBefore implements Renderer. A ref that is not a child of parent
// degrades to an append.
func (d *Document) InsertBefore(parent, child, ref Handle) {
	c := d.get(child)
	if c.parent != None {
		d.detach(c.parent, child)
	}
	p := d.get(parent)
	idx := -1
	for i, h := range p.children {
		if h == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.children = append(p.children, child)
	} else {
		p.children = append(p.children, None)
		copy(p.children[idx+1:], p.children[idx:])
		p.children[idx] = child
	}
	d.nodes[child].parent = parent
}

// ReplaceChild implements Renderer.
func (d *Document) ReplaceChild(parent, old, replacement Handle) {
	c := d.get(replacement)
	if c.parent != None {
		d.detach(c.parent, replacement)
	}
	p := d.get(parent)
	for i, h := range p.children {
		if h == old {
			p.children[i] = replacement
			d.nodes[replacement].parent = parent
			d.release(old)
			return
		}
	}
	panic(fmt.Sprintf("host: node %d is not a child of %d", old, parent))
}

// RemoveChild implements Renderer.
func (d *Document) RemoveChild(parent, child Handle) {
	d.detach(parent, child)
	d.release(child)
}

// NextSibling implements Renderer.
func (d *Document) NextSibling(h Handle) Handle {
	n := d.get(h)
	if n.parent == None {
		return None
	}
	siblings := d.nodes[n.parent].children
	for i, c := range siblings {
		if c == h && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return None
}

// AttachListener implements Renderer.
func (d *Document) AttachListener(h Handle, eventType string, cb Callback) ListenerHandle {
	n := d.get(h)
	l := docListener{node: h, eventType: eventType, cb: cb}
	var id ListenerHandle
	if k := len(d.freeL); k > 0 {
		id = d.freeL[k-1]
		d.freeL = d.freeL[:k-1]
		d.listeners[id] = l
	} else {
		d.listeners = append(d.listeners, l)
		id = ListenerHandle(len(d.listeners) - 1)
	}
	n.listeners = append(n.listeners, id)
	return id
}

// DetachListener implements Renderer.
func (d *Document) DetachListener(id ListenerHandle) {
	if id == 0 || int(id) >= len(d.listeners) {
		return
	}
	l := d.listeners[id]
	if l.node == None {
		return
	}
	n := d.get(l.node)
	for i, x := range n.listeners {
		if x == id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			break
		}
	}
	d.freeListener(id)
}

// Root implements Finder.
func (d *Document) Root() Handle {
	return d.root
}

// ElementByID implements Finder.
func (d *Document) ElementByID(id string) Handle {
	return d.find(d.root, "id", id)
}

// QueryAttr returns the first element in document order whose attribute
// name equals value, or None.
func (d *Document) QueryAttr(name, value string) Handle {
	return d.find(d.root, name, value)
}

func (d *Document) find(h Handle, name, value string) Handle {
	n := &d.nodes[h]
	if v, ok := n.attrs[name]; ok && n.kind == nodeElement && v == value {
		return h
	}
	for _, c := range n.children {
		if found := d.find(c, name, value); found != None {
			return found
		}
	}
	return None
}

// Dispatch fires every listener of the given event type attached to h.
// It reports whether any listener ran.
func (d *Document) Dispatch(h Handle, ev Event) bool {
	n := d.get(h)
	ev.Target = h
	var cbs []Callback
	for _, id := range n.listeners {
		if l := d.listeners[id]; l.eventType == ev.Type {
			cbs = append(cbs, l.cb)
		}
	}
	for _, cb := range cbs {
		cb(ev)
	}
	return len(cbs) > 0
}

// Live returns the number of allocated nodes, the root included.
func (d *Document) Live() int {
	return d.live
}

// Listeners returns the number of listeners attached to h.
func (d *Document) Listeners(h Handle) int {
	return len(d.get(h).listeners)
}

// Children returns a copy of h's child list.
func (d *Document) Children(h Handle) []Handle {
	return append([]Handle(nil), d.get(h).children...)
}

// Parent returns h's parent, or None when detached.
func (d *Document) Parent(h Handle) Handle {
	return d.get(h).parent
}

// Tag returns the tag of an element node.
func (d *Document) Tag(h Handle) string {
	return d.get(h).tag
}

// Text returns the content of a text node.
func (d *Document) Text(h Handle) string {
	return d.get(h).text
}

// Attr returns an attribute of an element node.
func (d *Document) Attr(h Handle, name string) (string, bool) {
	v, ok := d.get(h).attrs[name]
	return v, ok
}

// IsLive reports whether h currently addresses an allocated node.
func (d *Document) IsLive(h Handle) bool {
	return h != None && int(h) < len(d.nodes) && d.nodes[h].kind != nodeFree
}

// voidElements are elements serialized without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML serializes the subtree rooted at h. Attributes are sorted by name.
func (d *Document) HTML(h Handle) string {
	var b strings.Builder
	d.writeHTML(&b, h)
	return b.String()
}

// InnerHTML serializes the children of h.
func (d *Document) InnerHTML(h Handle) string {
	var b strings.Builder
	for _, c := range d.get(h).children {
		d.writeHTML(&b, c)
	}
	return b.String()
}

func (d *Document) writeHTML(b *strings.Builder, h Handle) {
	n := d.get(h)
	if n.kind == nodeText {
		b.WriteString(html.EscapeString(n.text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.tag] {
		return
	}
	for _, c := range n.children {
		d.writeHTML(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}
