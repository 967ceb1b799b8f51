package demo

import (
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vango"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// CounterProps configures one counter of the pair.
type CounterProps struct {
	Label  string
	OnBump vango.Callback[int]
}

// counterMsg is either a bump or a draft edit.
type counterMsg struct {
	Bump  int
	Draft *string
}

type counter struct {
	props CounterProps
	count int
	draft string
}

func (c *counter) Update(m counterMsg) bool {
	if m.Draft != nil {
		c.draft = *m.Draft
		return true
	}
	c.count += m.Bump
	c.props.OnBump.Emit(m.Bump)
	return m.Bump != 0
}

func (c *counter) View(b *vango.Behavior[counterMsg]) *vdom.VNode {
	return vdom.Div(
		vdom.Class("counter"),
		vdom.Span(vdom.Text(c.props.Label)),
		vdom.Button(
			vdom.Data("action", "bump-"+c.props.Label),
			vdom.OnClick(b.Callback(func(host.Event) counterMsg { return counterMsg{Bump: 1} })),
			vdom.Textf("%d", c.count),
		),
		vdom.Input(
			vdom.Data("action", "draft-"+c.props.Label),
			vdom.Value(c.draft),
			vdom.OnInput(b.Callback(func(e host.Event) counterMsg { return counterMsg{Draft: &e.Value} })),
		),
	)
}

// Counter is a labelled click counter that reports every bump to its
// parent.
var Counter = vango.Define("Counter", func(p CounterProps) vango.Component[counterMsg] {
	return &counter{props: p}
})

// pairMsg reports a bump from one side of the pair.
type pairMsg struct {
	Side  int
	Delta int
}

type pair struct {
	sides [2]int
}

func (p *pair) Update(m pairMsg) bool {
	p.sides[m.Side] += m.Delta
	return m.Delta != 0
}

func (p *pair) View(b *vango.Behavior[pairMsg]) *vdom.VNode {
	side := func(i int) vango.Callback[int] {
		return vango.Reform(b, func(d int) pairMsg { return pairMsg{Side: i, Delta: d} })
	}
	return vdom.Section(
		vdom.Class("pair"),
		vdom.P(vdom.Textf("total %d", p.sides[0]+p.sides[1])),
		Counter.New(CounterProps{Label: "A", OnBump: side(0)}),
		Counter.New(CounterProps{Label: "B", OnBump: side(1)}),
	)
}

// Pair renders two counters and their running total.
var Pair = vango.Define("Pair", func(struct{}) vango.Component[pairMsg] {
	return &pair{}
})
