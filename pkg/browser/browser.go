// Package browser binds the dom capability interfaces to a live Chrome tab
// via the DevTools protocol. It owns the browser lifecycle and hands out
// Tabs that the replay engine drives through pkg/dom.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultPageLoadTimeout bounds navigation waits.
const DefaultPageLoadTimeout = 30 * time.Second

// Manager handles the Chrome browser lifecycle and the controlled tab.
type Manager struct {
	mu          sync.Mutex
	browser     *rod.Browser
	page        *rod.Page
	headless    bool
	binPath     string
	debugURL    string
	loadTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithHeadless sets headless mode (default false).
func WithHeadless(h bool) Option {
	return func(m *Manager) { m.headless = h }
}

// WithBinPath overrides browser binary auto-detection.
func WithBinPath(path string) Option {
	return func(m *Manager) { m.binPath = path }
}

// WithDebugURL attaches to an already-running browser instead of launching
// one. The browser is left running on Stop.
func WithDebugURL(u string) Option {
	return func(m *Manager) { m.debugURL = u }
}

// WithPageLoadTimeout bounds how long Navigate waits for the load event.
func WithPageLoadTimeout(d time.Duration) Option {
	return func(m *Manager) { m.loadTimeout = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a Manager with options.
func New(opts ...Option) *Manager {
	m := &Manager{
		loadTimeout: DefaultPageLoadTimeout,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start launches Chrome, or attaches to one if a debug URL is configured.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return fmt.Errorf("browser already running")
	}

	controlURL := m.debugURL
	if controlURL == "" {
		l := launcher.New().
			Headless(m.headless).
			Set("disable-gpu").
			Set("no-first-run").
			Set("no-default-browser-check")
		if m.binPath != "" {
			l = l.Bin(m.binPath)
		}

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch Chrome: %w", err)
		}
		controlURL = u
		m.logger.Info("Chrome launched", "cdp", controlURL, "headless", m.headless)
	} else {
		m.logger.Info("attaching to running browser", "cdp", controlURL)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to Chrome: %w", err)
	}

	m.browser = b
	return nil
}

// Stop closes the browser. When attached via debug URL only the connection
// is dropped.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil
	}

	var err error
	if m.debugURL == "" {
		err = m.browser.Close()
	}
	m.browser = nil
	m.page = nil
	return err
}

// Tab returns the controlled tab, adopting the browser's first open page or
// creating a blank one. Repeated calls return a fresh handle over the same
// underlying tab; the execution context behind it is whatever the tab
// currently holds, which is what makes Tab usable for resumption after a
// navigation.
func (m *Manager) Tab(ctx context.Context) (*Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, fmt.Errorf("browser not running")
	}

	if m.page == nil {
		pages, err := m.browser.Pages()
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		if len(pages) > 0 {
			m.page = pages.First()
		} else {
			p, err := m.browser.Page(blankTarget())
			if err != nil {
				return nil, fmt.Errorf("open tab: %w", err)
			}
			m.page = p
		}
	}

	return &Tab{page: m.page, loadTimeout: m.loadTimeout, logger: m.logger}, nil
}

// Alive probes whether the controlled tab's execution context still answers.
func (m *Manager) Alive(ctx context.Context) bool {
	m.mu.Lock()
	page := m.page
	m.mu.Unlock()

	if page == nil {
		return false
	}
	_, err := page.Context(ctx).Eval(`() => true`)
	return err == nil
}

func blankTarget() proto.TargetCreateTarget {
	return proto.TargetCreateTarget{URL: "about:blank"}
}
