package replay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

func (e *Executor) open(ctx context.Context, step Step) error {
	url := step.Target
	if url == "" {
		url = step.Value
	}
	if url == "" {
		return fmt.Errorf("%w: OPEN requires a url", ErrPrecondition)
	}
	if err := e.target.Navigate(ctx, url); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s: %v", ErrNavigationTimeout, url, err)
		}
		return err
	}
	// Load completion is not interactability: give client-side frameworks
	// a beat to hydrate.
	return e.clk.Sleep(ctx, e.settle)
}

// click dispatches the full synthetic pointer cycle and then invokes native
// activation. Anchors skip activation: the synthetic click already reaches
// framework handlers, and firing the native behavior too produces visible
// double-toggle artifacts.
func (e *Executor) click(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	if err := dispatchAll(el,
		dom.MouseEvent(dom.EventMouseDown),
		dom.MouseEvent(dom.EventMouseUp),
		dom.MouseEvent(dom.EventClick),
	); err != nil {
		return err
	}
	if el.Tag() == "a" {
		return nil
	}
	return el.Activate()
}

func (e *Executor) dblClick(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	return dispatchAll(el,
		dom.MouseEvent(dom.EventMouseDown),
		dom.MouseEvent(dom.EventMouseUp),
		dom.MouseEvent(dom.EventClick),
		dom.MouseEvent(dom.EventMouseDown),
		dom.MouseEvent(dom.EventMouseUp),
		dom.MouseEvent(dom.EventClick),
		dom.MouseEvent(dom.EventDblClick),
	)
}

func (e *Executor) rightClick(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	return el.Dispatch(dom.Event{Type: dom.EventContextMenu, Button: dom.ButtonSecondary})
}

// typeValue writes the final value in one native-setter assignment. The
// setter bypasses framework property overrides, so the input/change pair
// afterwards is what makes the framework notice.
func (e *Executor) typeValue(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	if err := el.SetValue(step.Value); err != nil {
		return err
	}
	return dispatchAll(el,
		dom.Event{Type: dom.EventInput},
		dom.Event{Type: dom.EventChange},
		dom.Event{Type: dom.EventBlur},
	)
}

// typeChars types one character at a time for fields that react per
// keystroke (autocomplete, typeahead) and would ignore a bulk assignment.
func (e *Executor) typeChars(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	if err := el.SetValue(""); err != nil {
		return err
	}

	var partial strings.Builder
	for i, r := range step.Value {
		if i > 0 {
			if err := e.clk.Sleep(ctx, e.keyDelay); err != nil {
				return err
			}
		}
		key, code := keyCode(string(r))
		if err := el.Dispatch(dom.KeyEvent(dom.EventKeyDown, key, code)); err != nil {
			return err
		}
		partial.WriteRune(r)
		if err := el.SetValue(partial.String()); err != nil {
			return err
		}
		if err := el.Dispatch(dom.Event{Type: dom.EventInput}); err != nil {
			return err
		}
		if err := el.Dispatch(dom.KeyEvent(dom.EventKeyUp, key, code)); err != nil {
			return err
		}
	}

	return dispatchAll(el,
		dom.Event{Type: dom.EventChange},
		dom.Event{Type: dom.EventBlur},
	)
}

func (e *Executor) clear(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	if err := el.SetValue(""); err != nil {
		return err
	}
	return dispatchAll(el,
		dom.Event{Type: dom.EventInput},
		dom.Event{Type: dom.EventChange},
		dom.Event{Type: dom.EventBlur},
	)
}

func (e *Executor) selectOption(ctx context.Context, step Step) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	opts, ok := el.Options()
	if !ok {
		return fmt.Errorf("%w: SELECT on non-selection element <%s>", ErrPrecondition, el.Tag())
	}

	want := step.Value
	chosen := ""
	for _, o := range opts {
		if o.Value == want || o.Text == want {
			chosen = o.Value
			break
		}
	}
	if chosen == "" {
		// Fall back to a case-insensitive match on text or value.
		for _, o := range opts {
			if strings.EqualFold(o.Text, want) || strings.EqualFold(o.Value, want) {
				chosen = o.Value
				break
			}
		}
	}
	if chosen == "" {
		return fmt.Errorf("%w: no option matching %q", ErrPrecondition, want)
	}

	if err := el.SelectOption(chosen); err != nil {
		return err
	}
	return el.Dispatch(dom.Event{Type: dom.EventChange})
}

func (e *Executor) setChecked(ctx context.Context, step Step, want bool) error {
	el, err := e.resolveTarget(ctx, step)
	if err != nil {
		return err
	}
	if el.Checked() == want {
		return nil
	}
	if err := el.SetChecked(want); err != nil {
		return err
	}
	return dispatchAll(el,
		dom.Event{Type: dom.EventChange},
		dom.Event{Type: dom.EventInput},
	)
}

func (e *Executor) press(ctx context.Context, step Step) error {
	var el dom.Element
	if step.Target != "" {
		resolved, err := e.resolveTarget(ctx, step)
		if err != nil {
			return err
		}
		el = resolved
	} else {
		doc, err := e.target.Document()
		if err != nil {
			return err
		}
		ft, ok := doc.(dom.FocusTracker)
		if !ok {
			return fmt.Errorf("%w: PRESS without target needs focus tracking", ErrPrecondition)
		}
		focused, ok := ft.ActiveElement()
		if !ok {
			return fmt.Errorf("%w: PRESS without target and nothing focused", ErrPrecondition)
		}
		el = focused
	}

	key, code := keyCode(step.Value)
	if err := el.Dispatch(dom.KeyEvent(dom.EventKeyDown, key, code)); err != nil {
		return err
	}
	if key == "Enter" {
		if err := el.Dispatch(dom.KeyEvent(dom.EventKeyPress, key, code)); err != nil {
			return err
		}
	}
	return el.Dispatch(dom.KeyEvent(dom.EventKeyUp, key, code))
}

// wait is either a pure delay (value in milliseconds) or, with a locator,
// a resolver wait for the element to appear.
func (e *Executor) wait(ctx context.Context, step Step) error {
	if step.Target != "" {
		doc, err := e.target.Document()
		if err != nil {
			return err
		}
		_, err = e.res.Resolve(ctx, doc, step.Target)
		return err
	}

	ms, err := strconv.Atoi(strings.TrimSpace(step.Value))
	if err != nil || ms < 0 {
		return fmt.Errorf("%w: WAIT value %q is not a duration in ms", ErrPrecondition, step.Value)
	}
	return e.clk.Sleep(ctx, time.Duration(ms)*time.Millisecond)
}

func (e *Executor) assertExists(ctx context.Context, step Step) error {
	doc, err := e.target.Document()
	if err != nil {
		return err
	}
	_, err = e.res.Resolve(ctx, doc, step.Target)
	return err
}

func dispatchAll(el dom.Element, events ...dom.Event) error {
	for _, ev := range events {
		if err := el.Dispatch(ev); err != nil {
			return err
		}
	}
	return nil
}
