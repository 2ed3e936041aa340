package memdom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// El is a live in-memory element handle.
type El struct {
	doc      *Doc
	node     *html.Node
	value    string
	checked  bool
	selected string // selected option value for <select>
}

var _ dom.Element = (*El)(nil)

func (e *El) Tag() string { return e.node.Data }

func (e *El) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr mutates an attribute; tests use it to flip visibility mid-poll.
func (e *El) SetAttr(name, val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr drops an attribute if present.
func (e *El) RemoveAttr(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

func (e *El) Text() string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return strings.TrimSpace(b.String())
}

// Style reads the inline style attribute; the hidden attribute reads as
// display:none. memdom has no layout engine, so inline styles stand in for
// computed style.
func (e *El) Style(prop string) string {
	if prop == "display" && hasAttr(e.node, "hidden") {
		return "none"
	}
	style, _ := e.Attr("style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == prop {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Rect returns a nominal box unless a zero inline width/height is set.
func (e *El) Rect() (float64, float64) {
	w, h := 100.0, 20.0
	if v := e.Style("width"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			w = f
		}
	}
	if v := e.Style("height"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			h = f
		}
	}
	return w, h
}

// Parent crosses into the hosting iframe element at the top of a frame's
// tree, matching how the visibility walk spans frame boundaries.
func (e *El) Parent() dom.Element {
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			return e.doc.el(n)
		}
	}
	if e.doc.host != nil {
		return e.doc.host
	}
	return nil
}

func (e *El) Focus() error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.doc.mu.Lock()
	e.doc.focused = e
	e.doc.mu.Unlock()
	return nil
}

func (e *El) Blur() error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.doc.mu.Lock()
	if e.doc.focused == e {
		e.doc.focused = nil
	}
	e.doc.mu.Unlock()
	return nil
}

func (e *El) ScrollIntoView() error { return e.doc.check() }

func (e *El) Dispatch(ev dom.Event) error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.doc.mu.Lock()
	e.doc.events = append(e.doc.events, Recorded{Target: e, Event: ev})
	e.doc.mu.Unlock()
	return nil
}

// Activate performs native activation: checkbox/radio state change, form
// submission for submit controls, navigation for anchors.
func (e *El) Activate() error {
	if err := e.doc.check(); err != nil {
		return err
	}
	switch e.node.Data {
	case "input":
		switch typ, _ := e.Attr("type"); typ {
		case "checkbox":
			e.checked = !e.checked
		case "radio":
			e.checked = true
		case "submit":
			e.submitForm()
		}
	case "button":
		if typ, _ := e.Attr("type"); typ == "" || typ == "submit" {
			e.submitForm()
		}
	case "a":
		if e.doc.OnNavigate != nil {
			href, _ := e.Attr("href")
			e.doc.OnNavigate(href)
		}
	}
	return nil
}

func (e *El) submitForm() {
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == "form" {
			e.doc.mu.Lock()
			e.doc.submitted = append(e.doc.submitted, e)
			e.doc.mu.Unlock()
			return
		}
	}
}

func (e *El) Value() string {
	if e.node.Data == "select" {
		opts, _ := e.Options()
		for _, o := range opts {
			if e.isSelected(o.Value) {
				return o.Value
			}
		}
		if len(opts) > 0 {
			return opts[0].Value
		}
		return ""
	}
	return e.value
}

func (e *El) SetValue(v string) error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.value = v
	return nil
}

func (e *El) Checked() bool { return e.checked }

func (e *El) SetChecked(v bool) error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.checked = v
	return nil
}

func (e *El) Options() ([]dom.SelectOption, bool) {
	if e.node.Data != "select" {
		return nil, false
	}
	var opts []dom.SelectOption
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			o := dom.SelectOption{Value: attrVal(n, "value"), Text: strings.TrimSpace(textOf(n))}
			if o.Value == "" {
				o.Value = o.Text
			}
			opts = append(opts, o)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return opts, true
}

func (e *El) SelectOption(value string) error {
	if err := e.doc.check(); err != nil {
		return err
	}
	e.value = value
	e.selected = value
	return nil
}

func (e *El) isSelected(value string) bool { return e.selected == value }

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
