// Package locator turns a captured element snapshot into a durable selector
// string. Generation happens once at capture time; the resulting locator is
// consumed many times at replay time with no back-reference to the original
// element.
package locator

import (
	"fmt"
	"strings"
)

// Snapshot captures what the generator needs to know about one element at the
// moment of capture: tag, attributes, class list, any associated label, and
// the ancestor chain for the structural fallback.
type Snapshot struct {
	Tag     string
	Attrs   map[string]string
	Classes []string

	// Label is the associated <label>, if any (via for=id or wrapping).
	Label *LabelRef

	// Path is the ancestor chain, element first, outward toward the
	// document's outermost container.
	Path []PathNode
}

// LabelRef describes how a label is associated with the element.
type LabelRef struct {
	ForID string // the for= target, empty when the label wraps the element
	Wraps bool
}

// PathNode is one level of the structural fallback path.
type PathNode struct {
	Tag     string
	Classes []string
	// Index is the 1-based position among same-tag siblings; SameTag is
	// how many siblings (including this node) share the tag.
	Index   int
	SameTag int
}

// Test-hook attributes, in priority order.
var testAttrs = []string{"data-testid", "data-test-id", "data-cy"}

// maxPathDepth bounds the structural fallback to the element plus three
// ancestor levels.
const maxPathDepth = 4

// maxPathClasses bounds how many stable classes a path level carries.
const maxPathClasses = 2

// Generate produces a locator for the snapshot. It is pure and total:
// the only input that yields "" is a nil or malformed snapshot.
//
// Priority order, first match wins: test-hook attribute, stable id, name,
// aria-label, placeholder, associated label, structural path. The ordering
// favors selectors that survive re-renders over brittle structural paths.
func Generate(s *Snapshot) string {
	if s == nil || s.Tag == "" {
		return ""
	}
	tag := strings.ToLower(s.Tag)

	for _, attr := range testAttrs {
		if v, ok := s.Attrs[attr]; ok && v != "" {
			return "[" + attr + `="` + escapeAttr(v) + `"]`
		}
	}

	if id := s.Attrs["id"]; id != "" && StableID(id) {
		return "#" + escapeIdent(id)
	}

	if v := s.Attrs["name"]; v != "" {
		return tag + `[name="` + escapeAttr(v) + `"]`
	}

	if v := s.Attrs["aria-label"]; v != "" {
		return `[aria-label="` + escapeAttr(v) + `"]`
	}

	if v := s.Attrs["placeholder"]; v != "" {
		return tag + `[placeholder="` + escapeAttr(v) + `"]`
	}

	if sel := labelSelector(s, tag); sel != "" {
		return sel
	}

	return pathSelector(s, tag)
}

// labelSelector builds a selector from an associated <label>. With an id on
// the element the tag#id pair is enough; a wrapping label without an id falls
// back to a :has() combinator keyed on tag and type.
func labelSelector(s *Snapshot, tag string) string {
	if s.Label == nil {
		return ""
	}
	if id := s.Attrs["id"]; id != "" {
		return tag + "#" + escapeIdent(id)
	}
	inner := tag
	if t := s.Attrs["type"]; t != "" {
		inner = tag + `[type="` + escapeAttr(t) + `"]`
	}
	return fmt.Sprintf("label:has(%s) %s", inner, inner)
}

// pathSelector is the structural fallback: a child-combinator path of up to
// maxPathDepth levels, each carrying the tag, up to two non-dynamic classes,
// and a positional index only when siblings share the tag.
func pathSelector(s *Snapshot, tag string) string {
	path := s.Path
	if len(path) == 0 {
		path = []PathNode{{Tag: tag, Classes: s.Classes, Index: 1, SameTag: 1}}
	}
	if len(path) > maxPathDepth {
		path = path[:maxPathDepth]
	}

	parts := make([]string, 0, len(path))
	for _, n := range path {
		parts = append(parts, pathPart(n))
	}
	// Path is stored element-first; the selector reads outermost-first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func pathPart(n PathNode) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(n.Tag))

	kept := 0
	for _, c := range n.Classes {
		if kept == maxPathClasses {
			break
		}
		if c == "" || !StableClass(c) {
			continue
		}
		b.WriteString(".")
		b.WriteString(escapeIdent(c))
		kept++
	}

	if n.SameTag > 1 && n.Index >= 1 {
		fmt.Fprintf(&b, ":nth-of-type(%d)", n.Index)
	}
	return b.String()
}

// escapeAttr escapes a value for use inside a double-quoted attribute selector.
func escapeAttr(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

// escapeIdent escapes a CSS identifier (id or class name) so the generated
// selector stays parseable even with unusual characters in the source value.
// A leading digit cannot be escaped with a plain backslash, which would open
// a hex escape and swallow the following digits; it gets the CSS.escape
// form instead: the code point in hex plus a terminating space.
func escapeIdent(v string) string {
	var b strings.Builder
	for i, r := range v {
		if r >= '0' && r <= '9' {
			if i == 0 {
				fmt.Fprintf(&b, "\\%x ", r)
			} else {
				b.WriteRune(r)
			}
			continue
		}
		safe := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if safe {
			b.WriteRune(r)
		} else {
			b.WriteString(`\`)
			b.WriteRune(r)
		}
	}
	return b.String()
}
