package dom

// Synthetic event types dispatched during replay.
const (
	EventMouseDown   = "mousedown"
	EventMouseUp     = "mouseup"
	EventClick       = "click"
	EventDblClick    = "dblclick"
	EventContextMenu = "contextmenu"
	EventInput       = "input"
	EventChange      = "change"
	EventBlur        = "blur"
	EventKeyDown     = "keydown"
	EventKeyUp       = "keyup"
	EventKeyPress    = "keypress"
)

// Mouse button indicators, per the DOM MouseEvent.button convention.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// Event is a synthetic event ready for dispatch. Only the fields relevant to
// the event type are set.
type Event struct {
	Type   string
	Key    string // key value for keyboard events
	Code   string // canonical physical key code
	Button int    // mouse button indicator
}

// MouseEvent builds a mouse event with the primary button.
func MouseEvent(typ string) Event {
	return Event{Type: typ, Button: ButtonPrimary}
}

// KeyEvent builds a keyboard event for a key and its canonical code.
func KeyEvent(typ, key, code string) Event {
	return Event{Type: typ, Key: key, Code: code}
}
