package browser

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// Error fragments the DevTools protocol reports when the execution context
// behind a handle has been torn down, typically by a full-page navigation.
var ctxDestroyedFragments = []string{
	"Execution context was destroyed",
	"Cannot find context with specified id",
	"Node with given id does not belong to the document",
	"Session closed",
	"Target closed",
	"page has been closed",
}

// mapErr translates DevTools transport errors into the dom sentinel errors
// the replay engine branches on. Anything else passes through unchanged.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()

	// querySelectorAll rejects malformed selectors with a DOM SyntaxError.
	if strings.Contains(msg, "SyntaxError") && strings.Contains(msg, "selector") {
		return fmt.Errorf("%w: %v", dom.ErrBadSelector, err)
	}
	for _, frag := range ctxDestroyedFragments {
		if strings.Contains(msg, frag) {
			return fmt.Errorf("%w: %v", dom.ErrContextDestroyed, err)
		}
	}
	return err
}
