// Package dom defines the document-access capability the replay engine runs
// against. The engine never touches a browser API directly: it sees a
// Document that can be queried, Elements that can be inspected and driven,
// and Frames whose contents may be denied (cross-origin). pkg/browser binds
// these interfaces to a live Chrome tab; pkg/dom/memdom implements them over
// parsed HTML for tests and dry runs.
package dom

import "errors"

var (
	// ErrBadSelector is returned by QueryAll when the query engine
	// rejects the selector string itself.
	ErrBadSelector = errors.New("dom: bad selector")

	// ErrContextDestroyed is returned by any capability call after the
	// underlying execution context has been torn down, typically by a
	// full-page navigation.
	ErrContextDestroyed = errors.New("dom: execution context destroyed")
)

// Document is a queryable search root: the page document or the content
// document of a same-origin frame.
type Document interface {
	// QueryAll returns every element matching the selector, in document
	// order. A malformed selector yields ErrBadSelector.
	QueryAll(selector string) ([]Element, error)

	// Frames lists the document's nested frames in document order.
	Frames() []Frame
}

// FocusTracker is implemented by documents that can report the currently
// focused element. Used by key-press actions that carry no locator.
type FocusTracker interface {
	ActiveElement() (Element, bool)
}

// Frame is a nested browsing context. Access to its contents is a capability
// lookup, not a guarantee: cross-origin frames return ok=false and are
// skipped during traversal.
type Frame interface {
	Contents() (Document, bool)
}

// SelectOption is one entry of a selection control.
type SelectOption struct {
	Value string
	Text  string
}

// Element is a live handle to one page element. Handles are transient: the
// replay engine holds one only for the duration of a single action.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
	Text() string

	// Style returns the computed value of a CSS property.
	Style(prop string) string
	// Rect returns the rendered width and height.
	Rect() (w, h float64)
	// Parent returns the parent element, crossing into the host element
	// at a frame boundary, or nil at the outermost root.
	Parent() Element

	Focus() error
	Blur() error
	ScrollIntoView() error

	// Dispatch fires a synthetic event on the element.
	Dispatch(Event) error
	// Activate invokes the element's native activation behavior
	// (checkbox toggle, form submit, link follow).
	Activate() error

	Value() string
	// SetValue writes through the engine's native value-setter path,
	// bypassing framework property overrides. It does not fire events.
	SetValue(v string) error

	Checked() bool
	SetChecked(v bool) error

	// Options returns the option list and whether the element is a
	// selection control at all.
	Options() ([]SelectOption, bool)
	// SelectOption marks the option with the given value as selected.
	SelectOption(value string) error
}
