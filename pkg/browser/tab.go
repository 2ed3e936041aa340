package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// Tab is the replay engine's execution target: a handle over the controlled
// page that can be navigated and queried.
type Tab struct {
	page        *rod.Page
	loadTimeout time.Duration
	logger      *slog.Logger
}

// Document returns the tab's main document.
func (t *Tab) Document() (dom.Document, error) {
	if t.page == nil {
		return nil, fmt.Errorf("no page attached")
	}
	return &document{page: t.page}, nil
}

// Navigate loads url and waits for the load event, bounded by the page-load
// timeout.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	page := t.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return mapErr(err)
	}

	wctx, cancel := context.WithTimeout(ctx, t.loadTimeout)
	defer cancel()
	if err := t.page.Context(wctx).WaitLoad(); err != nil {
		return fmt.Errorf("wait for load of %s: %w", url, err)
	}
	t.logger.Debug("navigated", "url", url)
	return nil
}
