package vango

import (
	"github.com/goccy/go-json"

	"github.com/vango-dev/patchwork/pkg/host"
)

// Behavior is the handle a component's View uses to produce messages for
// its own instance.
type Behavior[M any] struct {
	node *Node
}

// Node returns the mounted node the behavior posts to.
func (b *Behavior[M]) Node() *Node { return b.node }

// Send queues msg for this instance. It never runs Update synchronously.
func (b *Behavior[M]) Send(msg M) {
	b.node.sched.PostUpdate(b.node, msg)
}

// Callback adapts a host event into a message for this instance.
func (b *Behavior[M]) Callback(fn func(e host.Event) M) host.Callback {
	return func(e host.Event) {
		b.Send(fn(e))
	}
}

// Filter is like Callback, but fn may decline to produce a message.
func (b *Behavior[M]) Filter(fn func(e host.Event) (M, bool)) host.Callback {
	return func(e host.Event) {
		if msg, ok := fn(e); ok {
			b.Send(msg)
		}
	}
}

// Callback is a typed callback a parent hands to a child through props.
// Two callbacks created for the same target instance hash identically, so
// passing a freshly built callback on every render does not defeat
// memoization of the child.
type Callback[T any] struct {
	target uint64
	fn     func(T)
}

// Reform returns a callback that converts a value into a message for b's
// instance.
func Reform[M, T any](b *Behavior[M], fn func(T) M) Callback[T] {
	return Callback[T]{
		target: b.node.id,
		fn: func(v T) {
			b.Send(fn(v))
		},
	}
}

// Emit invokes the callback. Emitting a zero Callback does nothing.
func (c Callback[T]) Emit(v T) {
	if c.fn != nil {
		c.fn(v)
	}
}

// IsZero reports whether the callback was never set.
func (c Callback[T]) IsZero() bool { return c.fn == nil }

// Target returns the id of the node the callback posts to.
func (c Callback[T]) Target() uint64 { return c.target }

// MarshalJSON encodes only the target identity.
func (c Callback[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target uint64 `json:"target"`
	}{c.target})
}
