// Package resolver turns a locator string into a live element handle by
// polling a search root (the page document plus nested same-origin frames)
// until a visible match appears or the time budget runs out.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextlevelbuilder/stepreplay/internal/clock"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

const (
	// DefaultInterval is the poll cadence.
	DefaultInterval = 100 * time.Millisecond

	// DefaultBudget is how long a locator may take to produce a visible
	// match before resolution fails.
	DefaultBudget = 15 * time.Second
)

// Match is a resolved element plus the document it was found in. It is
// transient: callers hold it only for the duration of one action.
type Match struct {
	Element dom.Element
	Doc     dom.Document
}

// Resolver polls for locator matches. Safe for reuse across steps; all
// waiting goes through the injected clock.
type Resolver struct {
	clk      clock.Clock
	interval time.Duration
	budget   time.Duration
	visible  dom.VisibilityChecker
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the timer capability (default wall clock).
func WithClock(c clock.Clock) Option {
	return func(r *Resolver) { r.clk = c }
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(r *Resolver) { r.interval = d }
}

// WithBudget sets the default resolution budget.
func WithBudget(d time.Duration) Option {
	return func(r *Resolver) { r.budget = d }
}

// WithVisibility swaps the visibility predicate. The computed-style ancestor
// walk is the reference; a faster engine-native check may replace it but must
// agree with it.
func WithVisibility(v dom.VisibilityChecker) Option {
	return func(r *Resolver) { r.visible = v }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver with options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		clk:      clock.Real{},
		interval: DefaultInterval,
		budget:   DefaultBudget,
		visible:  dom.ComputedStyleVisibility,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve polls with the default budget.
func (r *Resolver) Resolve(ctx context.Context, root dom.Document, loc string) (*Match, error) {
	return r.ResolveWithin(ctx, root, loc, r.budget)
}

// ResolveWithin polls until a visible match appears or budget elapses.
// Visibility is re-evaluated from scratch on every tick since layout can
// change between polls. The first visible match wins: duplicate locators
// across simultaneously mounted views are disambiguated by visibility, not
// document order.
func (r *Resolver) ResolveWithin(ctx context.Context, root dom.Document, loc string, budget time.Duration) (*Match, error) {
	if loc == "" {
		return nil, fmt.Errorf("resolve: empty locator: %w", ErrNotFound)
	}

	deadline := r.clk.Now().Add(budget)
	sawAny := false
	for {
		m, any, err := r.search(root, loc)
		if err != nil {
			return nil, err
		}
		sawAny = sawAny || any
		if m != nil {
			return m, nil
		}

		if !r.clk.Now().Before(deadline) {
			if sawAny {
				return nil, fmt.Errorf("resolve %q after %v: %w", loc, budget, ErrNotVisible)
			}
			return nil, fmt.Errorf("resolve %q after %v: %w", loc, budget, ErrNotFound)
		}
		if err := r.clk.Sleep(ctx, r.interval); err != nil {
			return nil, err
		}
	}
}

// search queries one document and then its frames depth-first. Frames whose
// contents are denied (cross-origin) are skipped, never treated as errors.
// The bool reports whether any match, visible or not, was observed.
func (r *Resolver) search(doc dom.Document, loc string) (*Match, bool, error) {
	els, err := doc.QueryAll(loc)
	if errors.Is(err, dom.ErrBadSelector) {
		// One fallback parse: strip backslash escapes and retry.
		els, err = doc.QueryAll(Unescape(loc))
		if errors.Is(err, dom.ErrBadSelector) {
			// Still malformed: this tick is a non-match.
			els, err = nil, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	any := len(els) > 0
	for _, el := range els {
		if r.visible(el) {
			return &Match{Element: el, Doc: doc}, true, nil
		}
	}

	for _, f := range doc.Frames() {
		sub, ok := f.Contents()
		if !ok {
			continue
		}
		m, subAny, err := r.search(sub, loc)
		any = any || subAny
		if err != nil {
			return nil, any, err
		}
		if m != nil {
			return m, true, nil
		}
	}
	return nil, any, nil
}

// Unescape strips backslash escapes from a locator, the fallback parse for
// selectors the query engine rejects in escaped form.
func Unescape(loc string) string {
	if !strings.ContainsRune(loc, '\\') {
		return loc
	}
	var b strings.Builder
	for i := 0; i < len(loc); i++ {
		if loc[i] == '\\' {
			if i+1 < len(loc) {
				i++
				b.WriteByte(loc[i])
			}
			continue
		}
		b.WriteByte(loc[i])
	}
	return b.String()
}
