package dom

import "strconv"

// VisibilityChecker decides whether a matched element counts as visible.
// Implementations backed by a faster engine-native check are an optimization
// only; ComputedStyleVisibility defines the semantics.
type VisibilityChecker func(Element) bool

// ComputedStyleVisibility is the canonical visibility predicate: an element
// is visible iff nothing in its ancestor chain (crossing frame boundaries via
// Parent) is display:none, visibility:hidden, opacity 0, or rendered at zero
// width/height. Layout can change between resolver polls, so callers must
// re-evaluate this on every tick rather than caching the answer.
func ComputedStyleVisibility(el Element) bool {
	for e := el; e != nil; e = e.Parent() {
		if e.Style("display") == "none" {
			return false
		}
		if e.Style("visibility") == "hidden" {
			return false
		}
		if op := e.Style("opacity"); op != "" {
			if f, err := strconv.ParseFloat(op, 64); err == nil && f == 0 {
				return false
			}
		}
		if w, h := e.Rect(); w == 0 || h == 0 {
			return false
		}
	}
	return true
}
