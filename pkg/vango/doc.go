// Package vango provides the component runtime for patchwork.
//
// A component is a value with private state that reacts to messages and
// renders a virtual tree:
//
//	type counter struct{ n int }
//
//	func (c *counter) Update(msg int) bool { c.n += msg; return true }
//
//	func (c *counter) View(b *vango.Behavior[int]) *vdom.VNode {
//	    return vdom.Button(vdom.OnClick(b.Callback(func(host.Event) int { return 1 })),
//	        vdom.Textf("%d", c.n))
//	}
//
//	var Counter = vango.Define("Counter", func(struct{}) vango.Component[int] {
//	    return &counter{}
//	})
//
// Parents embed children with Counter.New(props). The placeholder carries a
// hash of the component type and its properties; when a parent re-renders
// with an equal hash, the mounted child is adopted as-is and its View is not
// called again.
//
// # Scheduling
//
// Messages never run synchronously inside the handler that produced them.
// They are queued on the Scheduler, which drains in passes: every queued
// update is applied in arrival order, then every component that asked to
// re-render does so, shallowest first. A component re-renders at most once
// per pass no matter how many messages it received.
//
//	rt := vango.NewRuntime(doc, vango.Config{RootID: "app"})
//	root, err := rt.MountRootByID(App.Root(Props{}))
//
// In DrainSync mode the scheduler drains as soon as the first message is
// posted; in DrainDeferred mode the embedder calls Drain.
//
// # Thread Safety
//
// A Runtime and everything it mounts belong to one goroutine. Embedders
// that receive host events on several goroutines must serialize them.
package vango
