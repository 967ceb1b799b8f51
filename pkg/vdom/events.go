package vdom

import "github.com/vango-dev/patchwork/pkg/host"

// event creates an EventHandler for the given host event type.
func event(name string, cb host.Callback) EventHandler {
	return EventHandler{Event: name, Handler: cb}
}

// Mouse events

// OnClick handles click events.
func OnClick(cb host.Callback) EventHandler { return event("click", cb) }

// OnDblClick handles double-click events.
func OnDblClick(cb host.Callback) EventHandler { return event("dblclick", cb) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(cb host.Callback) EventHandler { return event("mouseenter", cb) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(cb host.Callback) EventHandler { return event("mouseleave", cb) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(cb host.Callback) EventHandler { return event("keydown", cb) }

// OnKeyUp handles keyup events.
func OnKeyUp(cb host.Callback) EventHandler { return event("keyup", cb) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(cb host.Callback) EventHandler { return event("input", cb) }

// OnChange handles change events (fired when value is committed).
func OnChange(cb host.Callback) EventHandler { return event("change", cb) }

// OnSubmit handles form submission.
func OnSubmit(cb host.Callback) EventHandler { return event("submit", cb) }

// Focus events

// OnFocus handles focus events.
func OnFocus(cb host.Callback) EventHandler { return event("focus", cb) }

// OnBlur handles blur events.
func OnBlur(cb host.Callback) EventHandler { return event("blur", cb) }
