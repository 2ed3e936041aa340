package locator

import "testing"

func snap(tag string, attrs map[string]string) *Snapshot {
	return &Snapshot{Tag: tag, Attrs: attrs}
}

func TestGenerate_TestAttrWinsOverEverything(t *testing.T) {
	s := snap("button", map[string]string{
		"data-testid": "submit-btn",
		"id":          "submit",
		"name":        "submit",
		"aria-label":  "Submit form",
	})

	got := Generate(s)
	want := `[data-testid="submit-btn"]`
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_TestAttrVariants(t *testing.T) {
	tests := []struct {
		attr string
		want string
	}{
		{"data-testid", `[data-testid="x"]`},
		{"data-test-id", `[data-test-id="x"]`},
		{"data-cy", `[data-cy="x"]`},
	}
	for _, tt := range tests {
		got := Generate(snap("div", map[string]string{tt.attr: "x"}))
		if got != tt.want {
			t.Errorf("Generate(%s) = %q, want %q", tt.attr, got, tt.want)
		}
	}
}

func TestGenerate_StableID(t *testing.T) {
	got := Generate(snap("button", map[string]string{"id": "submit"}))
	if got != "#submit" {
		t.Errorf("Generate = %q, want %q", got, "#submit")
	}
}

func TestGenerate_UnstableIDFallsThrough(t *testing.T) {
	s := snap("input", map[string]string{
		"id":   "r:123",
		"name": "email",
	})
	got := Generate(s)
	want := `input[name="email"]`
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_AriaLabelAndPlaceholder(t *testing.T) {
	got := Generate(snap("button", map[string]string{"aria-label": "Close dialog"}))
	if want := `[aria-label="Close dialog"]`; got != want {
		t.Errorf("aria-label: Generate = %q, want %q", got, want)
	}

	got = Generate(snap("input", map[string]string{"placeholder": "Search…"}))
	if want := `input[placeholder="Search…"]`; got != want {
		t.Errorf("placeholder: Generate = %q, want %q", got, want)
	}
}

func TestGenerate_NamePrecedesAriaLabel(t *testing.T) {
	s := snap("input", map[string]string{
		"name":       "q",
		"aria-label": "Search",
	})
	got := Generate(s)
	if want := `input[name="q"]`; got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_LabelWithID(t *testing.T) {
	s := &Snapshot{
		Tag:   "input",
		Attrs: map[string]string{"id": "12345", "type": "email"},
		Label: &LabelRef{ForID: "12345"},
	}
	// The id failed the stability filter for rule 2, but the label
	// association still anchors the selector on tag#id. The leading digit
	// takes the hex escape form; a bare backslash would itself start a
	// hex escape and consume the digits that follow.
	got := Generate(s)
	if want := `input#\31 2345`; got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_WrappingLabelWithoutID(t *testing.T) {
	s := &Snapshot{
		Tag:   "input",
		Attrs: map[string]string{"type": "checkbox"},
		Label: &LabelRef{Wraps: true},
	}
	got := Generate(s)
	want := `label:has(input[type="checkbox"]) input[type="checkbox"]`
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_StructuralPath(t *testing.T) {
	s := &Snapshot{
		Tag: "button",
		Path: []PathNode{
			{Tag: "button", Classes: []string{"btn-primary", "css-1a2b3c"}, Index: 2, SameTag: 3},
			{Tag: "div", Classes: []string{"toolbar"}, Index: 1, SameTag: 1},
			{Tag: "main", Index: 1, SameTag: 1},
		},
	}
	got := Generate(s)
	want := "main > div.toolbar > button.btn-primary:nth-of-type(2)"
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_StructuralPathDepthCap(t *testing.T) {
	s := &Snapshot{
		Tag: "span",
		Path: []PathNode{
			{Tag: "span", Index: 1, SameTag: 1},
			{Tag: "div", Index: 1, SameTag: 1},
			{Tag: "div", Index: 2, SameTag: 4},
			{Tag: "section", Index: 1, SameTag: 1},
			{Tag: "main", Index: 1, SameTag: 1},
			{Tag: "body", Index: 1, SameTag: 1},
		},
	}
	got := Generate(s)
	want := "section > div:nth-of-type(2) > div > span"
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_MalformedSnapshot(t *testing.T) {
	if got := Generate(nil); got != "" {
		t.Errorf("Generate(nil) = %q, want empty", got)
	}
	if got := Generate(&Snapshot{}); got != "" {
		t.Errorf("Generate(empty) = %q, want empty", got)
	}
}

func TestGenerate_QuoteEscaping(t *testing.T) {
	got := Generate(snap("div", map[string]string{"data-testid": `say "hi"`}))
	want := `[data-testid="say \"hi\""]`
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}
