package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// List groups nodes without a host node of its own. Arguments can be
// nil, *VNode, []*VNode or string.
func List(items ...any) *VNode {
	node := &VNode{Kind: KindList}
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// Fragment is an alias for List.
func Fragment(children ...any) *VNode {
	return List(children...)
}

// If expands to a List holding node when condition is true, or an empty List.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return List(node)
	}
	return List()
}

// IfElse expands to a List holding one of the two nodes.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return List(ifTrue)
	}
	return List(ifFalse)
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return List(fn())
	}
	return List()
}

// Unless is the inverse of If.
func Unless(condition bool, node *VNode) *VNode {
	return If(!condition, node)
}

// Case represents a case in a Switch statement.
type Case[T comparable] struct {
	Value     T
	Node      *VNode
	IsDefault bool
}

// Case_ creates a case for Switch.
func Case_[T comparable](value T, node *VNode) Case[T] {
	return Case[T]{Value: value, Node: node}
}

// Default creates a default case for Switch.
func Default[T comparable](node *VNode) Case[T] {
	return Case[T]{Node: node, IsDefault: true}
}

// Switch expands to a List holding the node of the matching case, falling
// back to the default case.
func Switch[T comparable](value T, cases ...Case[T]) *VNode {
	for _, c := range cases {
		if !c.IsDefault && c.Value == value {
			return List(c.Node)
		}
	}
	for _, c := range cases {
		if c.IsDefault {
			return List(c.Node)
		}
	}
	return List()
}

// Range maps a slice to a List.
func Range[T any](items []T, fn func(item T, index int) *VNode) *VNode {
	node := &VNode{Kind: KindList, Children: make([]*VNode, 0, len(items))}
	for i, item := range items {
		if child := fn(item, i); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Repeat creates a List of n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) *VNode {
	node := &VNode{Kind: KindList}
	for i := 0; i < n; i++ {
		if child := fn(i); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}
