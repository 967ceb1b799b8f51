package demo

import (
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vango"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

type cycle struct {
	step int
}

func (c *cycle) Update(struct{}) bool {
	c.step++
	return true
}

func (c *cycle) View(b *vango.Behavior[struct{}]) *vdom.VNode {
	var branch *vdom.VNode
	switch c.step {
	case 0:
		branch = vdom.P(vdom.Text("First"))
	case 1:
		branch = vdom.Div(vdom.Text("Second"))
	default:
		branch = vdom.Span(vdom.Text("Else"))
	}
	return vdom.Div(
		vdom.Class("cycle"),
		vdom.Button(
			vdom.Data("action", "next"),
			vdom.OnClick(b.Callback(func(host.Event) struct{} { return struct{}{} })),
			vdom.Text("next"),
		),
		branch,
	)
}

// Cycle shows "First", then "Second", then "Else" for every later step.
// Each branch uses a different element, so a step replaces the subtree.
var Cycle = vango.Define("Cycle", func(struct{}) vango.Component[struct{}] {
	return &cycle{}
})
