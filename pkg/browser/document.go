package browser

import (
	"github.com/go-rod/rod"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// document implements dom.Document over one page or frame.
type document struct {
	page *rod.Page
}

func (d *document) QueryAll(selector string) ([]dom.Element, error) {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]dom.Element, len(els))
	for i, e := range els {
		out[i] = &element{el: e}
	}
	return out, nil
}

// Frames lists nested frames in document order. Errors degrade to an empty
// list: a document that cannot enumerate frames has none worth searching.
func (d *document) Frames() []dom.Frame {
	els, err := d.page.Elements("iframe, frame")
	if err != nil {
		return nil
	}
	frames := make([]dom.Frame, len(els))
	for i, e := range els {
		frames[i] = &frame{el: e}
	}
	return frames
}

// ActiveElement implements dom.FocusTracker.
func (d *document) ActiveElement() (dom.Element, bool) {
	el, err := d.page.ElementByJS(rod.Eval(
		`() => document.activeElement !== document.body ? document.activeElement : null`))
	if err != nil || el == nil {
		return nil, false
	}
	return &element{el: el}, true
}

// frame defers content access until traversal asks for it. Cross-origin
// frame documents cannot be entered from here; that denial is an absence,
// not an error.
type frame struct {
	el *rod.Element
}

func (f *frame) Contents() (dom.Document, bool) {
	page, err := f.el.Frame()
	if err != nil {
		return nil, false
	}
	// Probe: a cross-origin frame rejects evaluation from this session.
	if _, err := page.Eval(`() => true`); err != nil {
		return nil, false
	}
	return &document{page: page}, true
}
