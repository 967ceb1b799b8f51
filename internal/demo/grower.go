package demo

import (
	"strconv"

	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vango"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// GrowerProps sets the initial item count.
type GrowerProps struct {
	Initial int
}

type grower struct {
	n int
}

func (g *grower) Update(delta int) bool {
	g.n += delta
	return delta != 0
}

func (g *grower) View(b *vango.Behavior[int]) *vdom.VNode {
	return vdom.Div(
		vdom.Class("grower"),
		vdom.Button(
			vdom.Data("action", "add"),
			vdom.OnClick(b.Callback(func(host.Event) int { return 1 })),
			vdom.Text("add"),
		),
		vdom.Ul(vdom.Repeat(g.n, func(i int) *vdom.VNode {
			return vdom.Li(vdom.Textf("item %d", i)).WithKey(strconv.Itoa(i))
		})),
	)
}

// Grower renders a list that gains one item per click of its add button.
var Grower = vango.Define("Grower", func(p GrowerProps) vango.Component[int] {
	return &grower{n: p.Initial}
})
