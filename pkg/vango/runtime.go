package vango

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
	"github.com/vango-dev/patchwork/pkg/routepath"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// DefaultRootID is the id of the host element the root component mounts
// into when none is configured.
const DefaultRootID = "app"

// Config configures a Runtime.
type Config struct {
	// RootID is the id of the host element MountRootByID mounts into.
	RootID string

	// Mode selects when the scheduler drains.
	Mode DrainMode

	// Logger receives runtime diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives scheduler activity.
	Observer Observer
}

// RootFunc builds the root component for a route.
type RootFunc func() Root

// Runtime ties a host renderer, a patcher and a scheduler together and
// owns the root component.
type Runtime struct {
	cfg     Config
	host    host.Renderer
	patcher *vdom.Patcher
	sched   *Scheduler
	logger  *slog.Logger

	routes     map[string]RootFunc
	path       string
	root       *Node
	mountPoint host.Handle
}

// NewRuntime creates a runtime driving r.
func NewRuntime(r host.Renderer, cfg Config) *Runtime {
	if cfg.RootID == "" {
		cfg.RootID = DefaultRootID
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	sched := NewScheduler(SchedulerOptions{
		Mode:     cfg.Mode,
		Logger:   cfg.Logger,
		Observer: cfg.Observer,
	})
	return &Runtime{
		cfg:     cfg,
		host:    r,
		patcher: &vdom.Patcher{Host: r, Scope: sched},
		sched:   sched,
		logger:  cfg.Logger,
		routes:  make(map[string]RootFunc),
	}
}

// Scheduler returns the runtime's scheduler.
func (rt *Runtime) Scheduler() *Scheduler { return rt.sched }

// Patcher returns the runtime's patcher.
func (rt *Runtime) Patcher() *vdom.Patcher { return rt.patcher }

// Root returns the mounted root node, or nil.
func (rt *Runtime) Root() *Node { return rt.root }

// Path returns the path of the active route.
func (rt *Runtime) Path() string { return rt.path }

// Prepare constructs a root node without rendering it.
func (rt *Runtime) Prepare(root Root) *Node {
	return root.construct(rt.sched, rt.patcher, 0)
}

// MountRoot constructs root and renders it as the last children of
// mountPoint.
func (rt *Runtime) MountRoot(root Root, mountPoint host.Handle) *Node {
	n := rt.Prepare(root)
	n.mount(mountPoint, host.None, nil)
	rt.root = n
	rt.mountPoint = mountPoint
	rt.logger.Debug("root mounted", "component", n.name, "mount", mountPoint)
	return n
}

// MountRootByID mounts root into the host element whose id is the
// configured RootID. When no such element exists one is created under the
// host's document root.
func (rt *Runtime) MountRootByID(root Root) (*Node, error) {
	mp, err := rt.resolveMountPoint()
	if err != nil {
		return nil, err
	}
	return rt.MountRoot(root, mp), nil
}

func (rt *Runtime) resolveMountPoint() (host.Handle, error) {
	if rt.mountPoint != host.None {
		return rt.mountPoint, nil
	}
	f, ok := rt.host.(host.Finder)
	if !ok {
		return host.None, errors.New(errors.CodeNoMountLookup).
			WithDetail("renderer %T does not implement host.Finder", rt.host)
	}
	if h := f.ElementByID(rt.cfg.RootID); h != host.None {
		return h, nil
	}
	docRoot := f.Root()
	if docRoot == host.None {
		return host.None, errors.New(errors.CodeNoMountLookup).
			WithDetail("renderer %T has no document root", rt.host)
	}
	h := rt.host.CreateElement("div")
	rt.host.SetAttribute(h, "id", rt.cfg.RootID)
	rt.host.AppendChild(docRoot, h)
	rt.logger.Warn("mount point created",
		"code", errors.CodeMissingHostRoot,
		"id", rt.cfg.RootID)
	return h, nil
}

// SwapRoot renders next in place of prev. Host nodes are reused wherever
// the two trees agree; prev is discarded.
func (rt *Runtime) SwapRoot(next, prev *Node) {
	next.replace(prev, rt.mountPoint)
	rt.root = next
}

// Handle registers the root for path, after canonicalizing it. An
// invalid path panics with E020.
func (rt *Runtime) Handle(path string, fn RootFunc) {
	clean, err := routepath.Clean(path)
	if err != nil {
		errors.Panic(errors.New(errors.CodeRouteNotFound).
			WithDetail("cannot register %q", path).
			Wrap(err))
	}
	rt.routes[clean] = fn
}

// Routes returns the registered paths in sorted order.
func (rt *Runtime) Routes() []string {
	paths := make([]string, 0, len(rt.routes))
	for p := range rt.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Navigate replaces the root with the one registered for path. The path
// is canonicalized first, so "/about/" and "/about?x=1" reach "/about".
func (rt *Runtime) Navigate(path string) error {
	clean, err := routepath.Clean(path)
	if err != nil {
		return errors.New(errors.CodeRouteNotFound).WithDetail("%q", path).Wrap(err)
	}
	path = clean
	fn, ok := rt.routes[path]
	if !ok {
		return errors.New(errors.CodeRouteNotFound).WithDetail("%q", path)
	}
	if rt.root == nil {
		if _, err := rt.MountRootByID(fn()); err != nil {
			return err
		}
	} else {
		rt.SwapRoot(rt.Prepare(fn()), rt.root)
	}
	rt.path = path
	rt.logger.Debug("navigated", "path", path, "component", rt.root.name)
	return nil
}

// Drain runs queued work to completion.
func (rt *Runtime) Drain(ctx context.Context) int {
	return rt.sched.Drain(ctx)
}

// Close erases the root tree and discards every mounted node.
func (rt *Runtime) Close() {
	if rt.root != nil {
		rt.root.erase()
		rt.root = nil
	}
}
