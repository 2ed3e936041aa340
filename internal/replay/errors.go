package replay

import "errors"

var (
	// ErrUnsupportedAction is returned for action kinds the executor does
	// not know.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrPrecondition is returned when an action's target cannot support
	// the action, e.g. SELECT on a non-selection element.
	ErrPrecondition = errors.New("action precondition failed")

	// ErrNavigationTimeout is returned when a navigation never reaches
	// load completion within its budget.
	ErrNavigationTimeout = errors.New("navigation timed out")
)
