package vdom

import (
	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element with an arbitrary tag.
func El(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, *VNode, []*VNode, string.
// A void element given children panics with E030.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind: KindElement,
		Tag:  tag,
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case EventHandler:
			if v.Handler != nil {
				node.Events = append(node.Events, v)
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))
		}
	}

	if len(node.Children) > 0 && voidElements[tag] {
		errors.Panic(errors.New(errors.CodeVoidChildren).
			WithDetail("<%s> given %d children", tag, len(node.Children)))
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		v.Key = propToString(a.Value)
		return
	}
	value, ok := attrValue(a.Value)
	if !ok {
		return
	}
	if v.Attrs == nil {
		v.Attrs = make(Attrs)
	}
	v.Attrs[a.Key] = value
}

// On binds a callback to an arbitrary host event type.
func On(eventType string, cb host.Callback) EventHandler {
	return EventHandler{Event: eventType, Handler: cb}
}

// Document structure elements

func Html(args ...any) *VNode  { return createElement("html", args) }
func Head(args ...any) *VNode  { return createElement("head", args) }
func Body(args ...any) *VNode  { return createElement("body", args) }
func Title(args ...any) *VNode { return createElement("title", args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func Aside(args ...any) *VNode   { return createElement("aside", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }
func Br(args ...any) *VNode   { return createElement("br", args) }

// Inline text semantics

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Img(args ...any) *VNode    { return createElement("img", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }

// Tables

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }
