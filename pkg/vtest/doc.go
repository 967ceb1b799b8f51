// Package vtest provides testing helpers for components.
//
// A Harness mounts a root component into an in-memory host document,
// records every host mutation and drives the component with events:
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, Counter.Root(CounterProps{}))
//	    h.Click(h.Find("inc"))
//	    h.ExpectContains("<button data-action=\"inc\">1</button>")
//	    if got := h.OpCounts()["SetText"]; got != 1 {
//	        t.Errorf("SetText ops = %d, want 1", got)
//	    }
//	}
//
// Elements are located by their data-action attribute with Find, or by any
// attribute with Query. Events drain the scheduler before returning, in
// either drain mode.
package vtest
