package vango

import (
	"container/heap"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// DrainMode selects when queued work runs.
type DrainMode uint8

const (
	// DrainSync drains as soon as work is posted from outside a drain.
	DrainSync DrainMode = iota
	// DrainDeferred leaves draining to the embedder.
	DrainDeferred
)

// String returns the string representation of the DrainMode.
func (m DrainMode) String() string {
	switch m {
	case DrainSync:
		return "sync"
	case DrainDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// PassStats summarizes one scheduler pass.
type PassStats struct {
	Pass      uint64
	Updates   int
	Rerenders int
	Skipped   int // discarded targets dropped from the re-render phase
	Elapsed   time.Duration
}

// Observer receives scheduler activity. Implementations must not post work
// back into the scheduler.
type Observer interface {
	BeginPass(ctx context.Context, pass uint64) context.Context
	EndPass(ctx context.Context, stats PassStats)
	Updated(ctx context.Context, n *Node, rerender bool)
	Rerendered(ctx context.Context, n *Node, elapsed time.Duration)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) BeginPass(ctx context.Context, _ uint64) context.Context { return ctx }
func (NopObserver) EndPass(context.Context, PassStats)                      {}
func (NopObserver) Updated(context.Context, *Node, bool)                    {}
func (NopObserver) Rerendered(context.Context, *Node, time.Duration)        {}

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	Mode     DrainMode
	Logger   *slog.Logger
	Observer Observer
}

// Scheduler queues messages and re-render requests and drains them in
// passes. It is not safe for concurrent use.
type Scheduler struct {
	mode     DrainMode
	logger   *slog.Logger
	observer Observer

	updates   []update
	rerenders rerenderQueue
	seq       uint64

	draining bool
	batch    int
	passes   uint64
	nodeIDs  uint64
}

type update struct {
	target *Node
	msg    any
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	s := &Scheduler{
		mode:     opts.Mode,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	return s
}

// Mode returns the drain mode.
func (s *Scheduler) Mode() DrainMode { return s.mode }

// Passes returns the number of passes run so far.
func (s *Scheduler) Passes() uint64 { return s.passes }

// Pending reports whether any work is queued.
func (s *Scheduler) Pending() bool {
	return len(s.updates) > 0 || s.rerenders.Len() > 0
}

// PostUpdate queues msg for target. Messages are delivered in post order,
// including to targets discarded in the meantime.
func (s *Scheduler) PostUpdate(target *Node, msg any) {
	s.updates = append(s.updates, update{target: target, msg: msg})
	s.kick()
}

// PostRerender queues a re-render of target unless one is already queued
// or target is discarded.
func (s *Scheduler) PostRerender(target *Node) {
	if target.state == StatePending || target.state == StateDiscarded {
		return
	}
	target.state = StatePending
	s.seq++
	heap.Push(&s.rerenders, rerenderItem{node: target, depth: target.depth, seq: s.seq})
	s.kick()
}

// Batch runs fn and drains once afterwards, regardless of mode. Work
// posted inside fn is not drained early.
func (s *Scheduler) Batch(fn func()) {
	s.batch++
	defer func() {
		s.batch--
		if s.batch == 0 {
			s.Drain(context.Background())
		}
	}()
	fn()
}

func (s *Scheduler) kick() {
	if s.mode == DrainSync && !s.draining && s.batch == 0 {
		s.Drain(context.Background())
	}
}

// Drain runs passes until no work is queued and returns the number of
// passes run. It is a no-op when called from inside a drain. A panic from
// a component aborts the drain and propagates to the caller.
func (s *Scheduler) Drain(ctx context.Context) int {
	if s.draining {
		return 0
	}
	s.draining = true
	defer func() { s.draining = false }()

	n := 0
	for s.Pending() {
		s.pass(ctx)
		n++
	}
	return n
}

// pass applies every update queued before it started, then re-renders the
// nodes queued by that point shallowest first. Work posted while the pass
// runs lands in the next pass.
func (s *Scheduler) pass(ctx context.Context) {
	s.passes++
	stats := PassStats{Pass: s.passes}
	start := time.Now()
	ctx = s.observer.BeginPass(ctx, s.passes)

	updates := s.updates
	s.updates = nil
	var (
		batch            []rerenderItem
		applied, started int
		completed        bool
	)
	// A panicking component aborts the pass. Work it had not reached is
	// queued again so the next drain still delivers it.
	defer func() {
		if !completed {
			s.requeue(updates[applied:], batch[started:])
		}
	}()

	for _, u := range updates {
		applied++
		rerender := u.target.ApplyUpdate(u.msg)
		s.observer.Updated(ctx, u.target, rerender)
		if rerender {
			s.PostRerender(u.target)
		}
	}
	stats.Updates = len(updates)

	batch = s.takeRerenders()
	for _, item := range batch {
		started++
		n := item.node
		if n.state == StateDiscarded {
			stats.Skipped++
			continue
		}
		n.state = StateIdle
		t := time.Now()
		n.Rerender()
		s.observer.Rerendered(ctx, n, time.Since(t))
		stats.Rerenders++
	}
	completed = true

	stats.Elapsed = time.Since(start)
	s.observer.EndPass(ctx, stats)
	s.logger.Debug("scheduler pass",
		"pass", stats.Pass,
		"updates", stats.Updates,
		"rerenders", stats.Rerenders,
		"skipped", stats.Skipped,
		"elapsed", stats.Elapsed)
}

// requeue puts unprocessed work from an aborted pass back in front of
// anything posted since. Re-render items keep their order and their
// nodes stay pending.
func (s *Scheduler) requeue(updates []update, rerenders []rerenderItem) {
	if len(updates) > 0 {
		s.updates = append(slices.Clone(updates), s.updates...)
	}
	for _, item := range rerenders {
		heap.Push(&s.rerenders, item)
	}
	s.logger.Warn("scheduler pass aborted",
		"pass", s.passes,
		"requeued_updates", len(updates),
		"requeued_rerenders", len(rerenders))
}

// takeRerenders empties the queue into a depth-ordered slice.
func (s *Scheduler) takeRerenders() []rerenderItem {
	if s.rerenders.Len() == 0 {
		return nil
	}
	out := make([]rerenderItem, 0, s.rerenders.Len())
	for s.rerenders.Len() > 0 {
		out = append(out, heap.Pop(&s.rerenders).(rerenderItem))
	}
	return out
}

func (s *Scheduler) newNode(name string, drv driver, patcher *vdom.Patcher, depth uint32) *Node {
	s.nodeIDs++
	return &Node{
		id:      s.nodeIDs,
		name:    name,
		sched:   s,
		patcher: patcher,
		drv:     drv,
		depth:   depth,
	}
}

type rerenderItem struct {
	node  *Node
	depth uint32
	seq   uint64
}

// rerenderQueue is a min-heap on (depth, seq).
type rerenderQueue []rerenderItem

func (q rerenderQueue) Len() int { return len(q) }

func (q rerenderQueue) Less(i, j int) bool {
	if q[i].depth != q[j].depth {
		return q[i].depth < q[j].depth
	}
	return q[i].seq < q[j].seq
}

func (q rerenderQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *rerenderQueue) Push(x any) { *q = append(*q, x.(rerenderItem)) }

func (q *rerenderQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = rerenderItem{}
	*q = old[:n-1]
	return item
}
