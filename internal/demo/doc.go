// Package demo holds small applications built on the component runtime.
//
// Each scenario is a real component tree:
//
//   - Pair (route /a): two independent counters and a running total fed
//     by callbacks the children receive through props.
//   - Grower (route /b): a list that grows by one item per click.
//   - Cycle (route /c): a view that switches between three branches.
//
// App registers all three on a runtime, which makes it usable directly as
// a server.AppFunc. Run mounts a scenario into an in-memory document and
// replays clicks against it; the CLI's demo command is built on it.
package demo
