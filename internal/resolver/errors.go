package resolver

import "errors"

var (
	// ErrNotFound means no element ever matched the locator within budget.
	ErrNotFound = errors.New("element not found")

	// ErrNotVisible means the locator matched at least once but no match
	// ever became visible within budget.
	ErrNotVisible = errors.New("element matched but never became visible")
)
