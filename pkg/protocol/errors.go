package protocol

// Error codes reported in STEP_COMPLETE and PLAYBACK_COMPLETE payloads.
const (
	ErrElementNotFound    = "ELEMENT_NOT_FOUND"
	ErrElementNotVisible  = "ELEMENT_NOT_VISIBLE"
	ErrUnsupportedAction  = "UNSUPPORTED_ACTION"
	ErrActionPrecondition = "ACTION_PRECONDITION"
	ErrNavigationTimeout  = "NAVIGATION_TIMEOUT"
	ErrEnvironmentLost    = "ENVIRONMENT_LOST"
	ErrPlaybackCancelled  = "PLAYBACK_CANCELLED"

	// Surface-level codes for command handling.
	ErrInvalidRequest = "INVALID_REQUEST"
	ErrBusy           = "BUSY"
	ErrNotPlaying     = "NOT_PLAYING"
	ErrInternal       = "INTERNAL"
)
