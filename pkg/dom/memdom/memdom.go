// Package memdom implements the pkg/dom capability set over an HTML tree
// parsed with golang.org/x/net/html. It backs the engine's tests and the
// `steps check` dry run: no browser, fully deterministic, and able to
// simulate frame nesting, visibility changes, and context teardown.
package memdom

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// Doc is an in-memory document. The zero value is not usable; construct with
// Parse.
type Doc struct {
	mu        sync.Mutex
	root      *html.Node
	els       map[*html.Node]*El
	frames    []*frameSlot
	host      *El // iframe element hosting this doc, nil at the top
	focused   *El
	destroyed bool

	events    []Recorded
	submitted []*El

	// OnNavigate, if set, is called when an anchor's native activation
	// would leave the page.
	OnNavigate func(href string)
}

// Recorded is one dispatched synthetic event, kept for test assertions.
type Recorded struct {
	Target *El
	Event  dom.Event
}

type frameSlot struct {
	el      *El
	doc     *Doc // nil when access is denied (cross-origin)
}

// Parse builds a Doc from an HTML fragment or document. Iframes with a
// srcdoc attribute become same-origin frames whose contents are parsed
// recursively; iframes without srcdoc are treated as cross-origin and deny
// access.
func Parse(src string) (*Doc, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	d := &Doc{root: root, els: make(map[*html.Node]*El)}
	if err := d.collectFrames(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Doc) collectFrames() error {
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == "iframe" {
			slot := &frameSlot{el: d.el(n)}
			if srcdoc := attrVal(n, "srcdoc"); srcdoc != "" {
				sub, err := Parse(srcdoc)
				if err != nil {
					return err
				}
				sub.host = slot.el
				slot.doc = sub
			}
			d.frames = append(d.frames, slot)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.root)
}

// el returns the El wrapper for a node, creating it on first use so element
// identity is stable across queries.
func (d *Doc) el(n *html.Node) *El {
	if e, ok := d.els[n]; ok {
		return e
	}
	e := &El{doc: d, node: n}
	if n.Data == "input" && hasAttr(n, "checked") {
		e.checked = true
	}
	e.value = attrVal(n, "value")
	d.els[n] = e
	return e
}

// Destroy simulates teardown of the execution context: every subsequent
// capability call fails with dom.ErrContextDestroyed.
func (d *Doc) Destroy() {
	d.mu.Lock()
	d.destroyed = true
	d.mu.Unlock()
}

func (d *Doc) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return dom.ErrContextDestroyed
	}
	return nil
}

// QueryAll implements dom.Document.
func (d *Doc) QueryAll(selector string) ([]dom.Element, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}

	var out []dom.Element
	d.walkElements(func(n *html.Node) {
		if sel.matches(n) {
			out = append(out, d.el(n))
		}
	})
	return out, nil
}

// Frames implements dom.Document.
func (d *Doc) Frames() []dom.Frame {
	if err := d.check(); err != nil {
		return nil
	}
	out := make([]dom.Frame, 0, len(d.frames))
	for _, f := range d.frames {
		out = append(out, f)
	}
	return out
}

// ActiveElement implements dom.FocusTracker.
func (d *Doc) ActiveElement() (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed || d.focused == nil {
		return nil, false
	}
	return d.focused, true
}

// Events returns the synthetic events dispatched so far, in order.
func (d *Doc) Events() []Recorded {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Recorded, len(d.events))
	copy(out, d.events)
	return out
}

// EventTypes returns just the event type names, for compact assertions.
func (d *Doc) EventTypes() []string {
	evs := d.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Event.Type
	}
	return out
}

// Submitted returns the elements whose native activation submitted a form.
func (d *Doc) Submitted() []*El {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*El, len(d.submitted))
	copy(out, d.submitted)
	return out
}

// First returns the first element matching selector, for test setup.
func (d *Doc) First(selector string) *El {
	els, err := d.QueryAll(selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return els[0].(*El)
}

func (d *Doc) walkElements(fn func(*html.Node)) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

func (f *frameSlot) Contents() (dom.Document, bool) {
	if f.doc == nil {
		return nil, false
	}
	return f.doc, true
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
