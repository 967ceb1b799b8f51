package host

import "testing"

func TestDocumentBuildAndSerialize(t *testing.T) {
	d := NewDocument("body")
	div := d.CreateElement("div")
	d.SetAttribute(div, "class", "card")
	d.SetAttribute(div, "id", "main")
	txt := d.CreateText("a < b")
	d.AppendChild(div, txt)
	d.AppendChild(d.Root(), div)

	want := `<body><div class="card" id="main">a &lt; b</div></body>`
	if got := d.HTML(d.Root()); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if got := d.ElementByID("main"); got != div {
		t.Errorf("ElementByID() = %v, want %v", got, div)
	}
	if got := d.Live(); got != 3 {
		t.Errorf("Live() = %d, want 3", got)
	}
}

func TestDocumentQueryAttr(t *testing.T) {
	d := NewDocument("body")
	outer := d.CreateElement("div")
	inner := d.CreateElement("button")
	second := d.CreateElement("button")
	d.SetAttribute(inner, "data-action", "go")
	d.SetAttribute(second, "data-action", "go")
	d.AppendChild(outer, inner)
	d.AppendChild(d.Root(), outer)
	d.AppendChild(d.Root(), second)

	tests := []struct {
		name, value string
		want        Handle
	}{
		{"data-action", "go", inner},
		{"data-action", "stop", None},
		{"class", "", None},
	}
	for _, tt := range tests {
		if got := d.QueryAttr(tt.name, tt.value); got != tt.want {
			t.Errorf("QueryAttr(%q, %q) = %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestDocumentInsertBefore(t *testing.T) {
	d := NewDocument("ul")
	a := d.CreateText("a")
	c := d.CreateText("c")
	d.AppendChild(d.Root(), a)
	d.AppendChild(d.Root(), c)

	b := d.CreateText("b")
	d.InsertBefore(d.Root(), b, c)
	if got := d.InnerHTML(d.Root()); got != "abc" {
		t.Errorf("InnerHTML() = %q, want abc", got)
	}

	// Unknown ref degrades to append.
	e := d.CreateText("e")
	d.InsertBefore(d.Root(), e, Handle(999))
	if got := d.InnerHTML(d.Root()); got != "abce" {
		t.Errorf("InnerHTML() = %q, want abce", got)
	}
	if got := d.NextSibling(b); got != c {
		t.Errorf("NextSibling(b) = %v, want %v", got, c)
	}
	if got := d.NextSibling(e); got != None {
		t.Errorf("NextSibling(last) = %v, want None", got)
	}
}

func TestDocumentRemoveReleasesSubtree(t *testing.T) {
	d := NewDocument("body")
	div := d.CreateElement("div")
	span := d.CreateElement("span")
	d.AppendChild(span, d.CreateText("x"))
	d.AppendChild(div, span)
	d.AppendChild(d.Root(), div)
	d.AttachListener(span, "click", func(Event) {})

	if got := d.Live(); got != 4 {
		t.Fatalf("Live() = %d, want 4", got)
	}

	d.RemoveChild(d.Root(), div)

	if got := d.Live(); got != 1 {
		t.Errorf("Live() after remove = %d, want 1", got)
	}
	if d.IsLive(span) {
		t.Error("span still live after its ancestor was removed")
	}

	// Freed slots are reused.
	again := d.CreateElement("p")
	if again != div {
		t.Errorf("CreateElement() = %v, want recycled handle %v", again, div)
	}
}

func TestDocumentReplaceChild(t *testing.T) {
	d := NewDocument("body")
	old := d.CreateElement("div")
	d.AppendChild(old, d.CreateText("old"))
	d.AppendChild(d.Root(), old)
	tail := d.CreateElement("footer")
	d.AppendChild(d.Root(), tail)

	repl := d.CreateElement("span")
	d.ReplaceChild(d.Root(), old, repl)

	if got := d.InnerHTML(d.Root()); got != "<span></span><footer></footer>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if got := d.Live(); got != 3 {
		t.Errorf("Live() = %d, want 3", got)
	}
}

func TestDocumentDispatch(t *testing.T) {
	d := NewDocument("body")
	btn := d.CreateElement("button")
	d.AppendChild(d.Root(), btn)

	var clicks int
	var got Event
	l := d.AttachListener(btn, "click", func(e Event) {
		clicks++
		got = e
	})
	d.AttachListener(btn, "input", func(Event) { t.Error("input listener fired on click") })

	if !d.Dispatch(btn, Event{Type: "click", Value: "v"}) {
		t.Fatal("Dispatch() = false, want true")
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if got.Target != btn || got.Value != "v" {
		t.Errorf("event = %+v", got)
	}

	d.DetachListener(l)
	if d.Dispatch(btn, Event{Type: "click"}) {
		t.Error("Dispatch() after detach = true, want false")
	}
	if n := d.Listeners(btn); n != 1 {
		t.Errorf("Listeners() = %d, want 1", n)
	}
}

func TestDocumentInvalidHandlePanics(t *testing.T) {
	d := NewDocument("body")
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid handle")
		}
	}()
	d.SetText(Handle(42), "x")
}
