package browser

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// element implements dom.Element over a live node. The read-only getters
// swallow evaluation errors and return zero values: a torn-down context
// surfaces through the mutating calls and through QueryAll, which is where
// the engine checks.
type element struct {
	el *rod.Element
}

func (e *element) Tag() string {
	res, err := e.el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *element) Text() string {
	s, err := e.el.Text()
	if err != nil {
		return ""
	}
	return s
}

func (e *element) Style(prop string) string {
	res, err := e.el.Eval(`p => getComputedStyle(this).getPropertyValue(p)`, prop)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Rect() (w, h float64) {
	res, err := e.el.Eval(`() => {
		const r = this.getBoundingClientRect()
		return [r.width, r.height]
	}`)
	if err != nil {
		return 0, 0
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return 0, 0
	}
	return arr[0].Num(), arr[1].Num()
}

// Parent crosses into the host element at a same-origin frame boundary, so
// the visibility walk sees styles applied to the iframe itself.
func (e *element) Parent() dom.Element {
	parent, err := e.el.ElementByJS(rod.Eval(`() => {
		if (this.parentElement) return this.parentElement
		try {
			const win = this.ownerDocument && this.ownerDocument.defaultView
			return win ? win.frameElement : null
		} catch (_) {
			return null
		}
	}`))
	if err != nil || parent == nil {
		return nil
	}
	return &element{el: parent}
}

func (e *element) Focus() error {
	return mapErr(e.el.Focus())
}

func (e *element) Blur() error {
	_, err := e.el.Eval(`() => this.blur()`)
	return mapErr(err)
}

func (e *element) ScrollIntoView() error {
	return mapErr(e.el.ScrollIntoView())
}

func (e *element) Dispatch(ev dom.Event) error {
	_, err := e.el.Eval(`(type, key, code, button) => {
		let event
		if (type.startsWith('key')) {
			event = new KeyboardEvent(type, {key, code, bubbles: true, cancelable: true})
		} else if (['mousedown', 'mouseup', 'click', 'dblclick', 'contextmenu'].includes(type)) {
			event = new MouseEvent(type, {button, bubbles: true, cancelable: true})
		} else {
			const bubbles = type !== 'blur' && type !== 'focus'
			event = new Event(type, {bubbles, cancelable: true})
		}
		this.dispatchEvent(event)
	}`, ev.Type, ev.Key, ev.Code, ev.Button)
	return mapErr(err)
}

func (e *element) Activate() error {
	_, err := e.el.Eval(`() => {
		if (typeof this.click === 'function') this.click()
	}`)
	return mapErr(err)
}

func (e *element) Value() string {
	res, err := e.el.Eval(`() => this.value === undefined ? '' : String(this.value)`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// SetValue writes through the prototype's native value setter, bypassing
// framework property overrides so controlled inputs observe the change.
func (e *element) SetValue(v string) error {
	_, err := e.el.Eval(`v => {
		let proto = HTMLInputElement.prototype
		if (this.tagName === 'TEXTAREA') proto = HTMLTextAreaElement.prototype
		else if (this.tagName === 'SELECT') proto = HTMLSelectElement.prototype
		const desc = Object.getOwnPropertyDescriptor(proto, 'value')
		if (desc && desc.set) desc.set.call(this, v)
		else this.value = v
	}`, v)
	return mapErr(err)
}

func (e *element) Checked() bool {
	res, err := e.el.Eval(`() => !!this.checked`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *element) SetChecked(v bool) error {
	_, err := e.el.Eval(`v => {
		const desc = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'checked')
		if (desc && desc.set) desc.set.call(this, v)
		else this.checked = v
	}`, v)
	return mapErr(err)
}

func (e *element) Options() ([]dom.SelectOption, bool) {
	res, err := e.el.Eval(`() => {
		if (this.tagName !== 'SELECT') return null
		return Array.from(this.options).map(o => [o.value, o.text])
	}`)
	if err != nil || res.Value.Nil() {
		return nil, false
	}
	var opts []dom.SelectOption
	for _, pair := range res.Value.Arr() {
		p := pair.Arr()
		if len(p) != 2 {
			continue
		}
		opts = append(opts, dom.SelectOption{Value: p[0].Str(), Text: p[1].Str()})
	}
	return opts, true
}

func (e *element) SelectOption(value string) error {
	res, err := e.el.Eval(`v => {
		for (const o of this.options) {
			if (o.value === v) {
				this.selectedIndex = o.index
				return true
			}
		}
		return false
	}`, value)
	if err != nil {
		return mapErr(err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("no option with value %q", value)
	}
	return nil
}
