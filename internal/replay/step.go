// Package replay executes recorded steps against a live document: it
// resolves each step's locator, then mutates the target and dispatches the
// synthetic event sequences frameworks expect.
package replay

import "strings"

// Action is a step's action kind.
type Action string

const (
	ActionOpen         Action = "OPEN"
	ActionClick        Action = "CLICK"
	ActionDblClick     Action = "DBLCLICK"
	ActionRightClick   Action = "RIGHTCLICK"
	ActionType         Action = "TYPE"
	ActionTypeChar     Action = "TYPE_CHAR"
	ActionClear        Action = "CLEAR"
	ActionSelect       Action = "SELECT"
	ActionCheck        Action = "CHECK"
	ActionUncheck      Action = "UNCHECK"
	ActionPress        Action = "PRESS"
	ActionWait         Action = "WAIT"
	ActionAssertExists Action = "ASSERT_EXISTS"
)

var knownActions = map[Action]bool{
	ActionOpen: true, ActionClick: true, ActionDblClick: true,
	ActionRightClick: true, ActionType: true, ActionTypeChar: true,
	ActionClear: true, ActionSelect: true, ActionCheck: true,
	ActionUncheck: true, ActionPress: true, ActionWait: true,
	ActionAssertExists: true,
}

// ParseAction normalizes a raw action string (case-insensitive) and reports
// whether it names a known action.
func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	return a, knownActions[a]
}

// Step is one recorded interaction. Steps are immutable once created: the
// capture engine produces them and the replay side only reads them.
type Step struct {
	Action      Action
	Target      string // locator, may be empty
	Value       string // action argument, may be empty
	Description string
}
