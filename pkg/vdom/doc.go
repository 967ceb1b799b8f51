// Package vdom provides the virtual node model and the reconciliation engine.
//
// A VNode describes desired UI: text, elements, transparent lists, and
// component placeholders. The Patcher diffs a freshly built tree against the
// previously rendered one, drives a host.Renderer with the minimal set of
// mutations, and carries live host handles forward into the new tree.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), Key("row-1"),
//	    H1(Text("Title")),
//	    If(open, P(Text("Content"))),
//	    Button(OnClick(cb), Text("Close")),
//	)
//
// Control-flow helpers (If, Switch, Range, Repeat) always expand into a List
// node so sibling positions stay stable when a branch yields nothing.
//
// # Reconciliation
//
// Children are diffed positionally. Keys never reorder children; equal
// non-empty keys on the old and new node at the same position make the
// engine treat them as the same node without comparing tags or property
// hashes.
//
// # Ownership
//
// A host handle is owned by exactly one VNode. When a node is reused across
// a patch its handle is moved to the new node and cleared on the old one.
package vdom
