package demo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/vango"
)

// Scenario is one routed demo.
type Scenario struct {
	Name   string
	Path   string
	Title  string
	Action string // data-action of the element Run clicks
	Root   vango.RootFunc
}

// Scenarios lists every demo in route order.
var Scenarios = []Scenario{
	{
		Name:   "a",
		Path:   "/a",
		Title:  "two counters and a total",
		Action: "bump-A",
		Root:   func() vango.Root { return Pair.Root(struct{}{}) },
	},
	{
		Name:   "b",
		Path:   "/b",
		Title:  "list growing by one item per click",
		Action: "add",
		Root:   func() vango.Root { return Grower.Root(GrowerProps{}) },
	},
	{
		Name:   "c",
		Path:   "/c",
		Title:  "three-branch cycle",
		Action: "next",
		Root:   func() vango.Root { return Cycle.Root(struct{}{}) },
	},
}

// Lookup finds a scenario by name or path.
func Lookup(name string) (Scenario, error) {
	name = strings.TrimPrefix(strings.ToLower(name), "/")
	for _, s := range Scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, errors.New(errors.CodeRouteNotFound).
		WithDetail("no scenario %q", name).
		WithSuggestion("Use one of: a, b, c")
}

// App registers every scenario on rt. "/" serves scenario a.
func App(rt *vango.Runtime) {
	for _, s := range Scenarios {
		rt.Handle(s.Path, s.Root)
	}
	rt.Handle("/", Scenarios[0].Root)
}

// Report describes a scripted run.
type Report struct {
	Scenario Scenario
	Clicks   int

	// HTML is the document body after the last click.
	HTML string

	// MountOps counts host mutations made by the initial mount, and
	// ClickOps those made by all clicks together, both keyed by op name.
	MountOps map[string]int
	ClickOps map[string]int

	Passes uint64
}

// Options configures Run.
type Options struct {
	Clicks   int
	Mode     vango.DrainMode
	Logger   *slog.Logger
	Observer vango.Observer
}

// Run mounts the named scenario into an in-memory document and clicks its
// action element opts.Clicks times, draining after each click.
func Run(ctx context.Context, name string, opts Options) (*Report, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clicks := opts.Clicks

	doc := host.NewDocument("body")
	mountPoint := doc.CreateElement("div")
	doc.SetAttribute(mountPoint, "id", vango.DefaultRootID)
	doc.AppendChild(doc.Root(), mountPoint)

	rec := host.NewRecorder(doc)
	rt := vango.NewRuntime(rec, vango.Config{
		Mode:     opts.Mode,
		Logger:   logger,
		Observer: opts.Observer,
	})
	App(rt)
	defer rt.Close()

	if err := rt.Navigate(s.Path); err != nil {
		return nil, err
	}
	report := &Report{
		Scenario: s,
		Clicks:   clicks,
		MountOps: countOps(rec.Reset()),
	}

	target := doc.QueryAttr("data-action", s.Action)
	if target == host.None {
		return nil, errors.New(errors.CodeInternal).
			WithDetail("scenario %s has no %q element", s.Name, s.Action)
	}

	var ops []host.Op
	for i := 0; i < clicks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Dispatch(target, host.Event{Type: "click"})
		rt.Drain(ctx)
		ops = append(ops, rec.Reset()...)
	}
	logger.Debug("demo run finished", "scenario", s.Name, "clicks", clicks, "ops", len(ops))

	report.ClickOps = countOps(ops)
	report.HTML = doc.InnerHTML(doc.Root())
	report.Passes = rt.Scheduler().Passes()
	return report, nil
}

func countOps(ops []host.Op) map[string]int {
	out := make(map[string]int)
	for _, op := range ops {
		out[op.Kind.String()]++
	}
	return out
}
