package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/stepreplay/internal/clock"
	"github.com/nextlevelbuilder/stepreplay/internal/resolver"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

const (
	// DefaultPostLoadSettle gives client-side frameworks time to hydrate
	// after a navigation reports load completion.
	DefaultPostLoadSettle = 500 * time.Millisecond

	// DefaultKeyDelay is the pause between keystrokes in TYPE_CHAR.
	DefaultKeyDelay = 30 * time.Millisecond
)

// Target is the execution context an Executor drives: one controlled tab.
// A full-page navigation destroys it; the session controller then builds a
// fresh Executor around a re-established Target.
type Target interface {
	// Document returns the current search root. After teardown it fails
	// with dom.ErrContextDestroyed.
	Document() (dom.Document, error)

	// Navigate requests navigation to url and waits for load completion.
	Navigate(ctx context.Context, url string) error
}

// Executor dispatches one step at a time to its action handler. It holds no
// sequence state: step order, outcomes, and index bookkeeping belong to the
// session controller, which is what makes a mid-sequence rebuild safe.
type Executor struct {
	target   Target
	res      *resolver.Resolver
	clk      clock.Clock
	settle   time.Duration
	keyDelay time.Duration
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithResolver sets the element resolver.
func WithResolver(r *resolver.Resolver) Option {
	return func(e *Executor) { e.res = r }
}

// WithClock sets the timer capability.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) { e.clk = c }
}

// WithPostLoadSettle sets the settle delay after OPEN completes its load.
func WithPostLoadSettle(d time.Duration) Option {
	return func(e *Executor) { e.settle = d }
}

// WithKeyDelay sets the inter-keystroke delay for TYPE_CHAR.
func WithKeyDelay(d time.Duration) Option {
	return func(e *Executor) { e.keyDelay = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor bound to one execution context.
func NewExecutor(target Target, opts ...Option) *Executor {
	e := &Executor{
		target:   target,
		clk:      clock.Real{},
		settle:   DefaultPostLoadSettle,
		keyDelay: DefaultKeyDelay,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.res == nil {
		e.res = resolver.New(resolver.WithClock(e.clk))
	}
	return e
}

// ExecuteStep runs one step to its terminal outcome. A nil return is
// success; every waiting point observes ctx for cancellation.
func (e *Executor) ExecuteStep(ctx context.Context, step Step) error {
	if _, ok := ParseAction(string(step.Action)); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, step.Action)
	}

	e.logger.Debug("executing step",
		"action", step.Action, "target", step.Target, "value", step.Value)

	switch step.Action {
	case ActionOpen:
		return e.open(ctx, step)
	case ActionClick:
		return e.click(ctx, step)
	case ActionDblClick:
		return e.dblClick(ctx, step)
	case ActionRightClick:
		return e.rightClick(ctx, step)
	case ActionType:
		return e.typeValue(ctx, step)
	case ActionTypeChar:
		return e.typeChars(ctx, step)
	case ActionClear:
		return e.clear(ctx, step)
	case ActionSelect:
		return e.selectOption(ctx, step)
	case ActionCheck:
		return e.setChecked(ctx, step, true)
	case ActionUncheck:
		return e.setChecked(ctx, step, false)
	case ActionPress:
		return e.press(ctx, step)
	case ActionWait:
		return e.wait(ctx, step)
	case ActionAssertExists:
		return e.assertExists(ctx, step)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedAction, step.Action)
}

// resolveTarget finds the step's element and scrolls it into view.
func (e *Executor) resolveTarget(ctx context.Context, step Step) (dom.Element, error) {
	doc, err := e.target.Document()
	if err != nil {
		return nil, err
	}
	m, err := e.res.Resolve(ctx, doc, step.Target)
	if err != nil {
		return nil, err
	}
	if err := m.Element.ScrollIntoView(); err != nil {
		return nil, err
	}
	return m.Element, nil
}
