// Package protocol defines the command/event surface exchanged with external
// collaborators (capture engine, review UI, persistence). It is transport
// agnostic: the messages here ride on whatever bus the host process provides.
package protocol

// Command names accepted by the replay service.
const (
	CmdStartRecording = "START_RECORDING"
	CmdStopRecording  = "STOP_RECORDING"
	CmdStartPlayback  = "START_PLAYBACK"
	CmdStopPlayback   = "STOP_PLAYBACK"
	CmdGetStatus      = "GET_STATUS"
)

// Event names pushed to collaborators.
const (
	EventStepRecorded     = "STEP_RECORDED"
	EventStepComplete     = "STEP_COMPLETE"
	EventPlaybackComplete = "PLAYBACK_COMPLETE"
)

// Step statuses carried in STEP_COMPLETE events.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StepRecord is the 4-field step shape shared with collaborators.
// Action is case-insensitive on ingestion and upper-cased.
type StepRecord struct {
	Action      string `json:"action"`
	Target      string `json:"target"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// StepComplete is the payload of a STEP_COMPLETE event.
type StepComplete struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PlaybackComplete is the payload of a PLAYBACK_COMPLETE event.
// FailedStep is -1 when the run succeeded or was aborted before any failure.
type PlaybackComplete struct {
	Success    bool `json:"success"`
	Aborted    bool `json:"aborted,omitempty"`
	FailedStep int  `json:"failedStep"`
	TotalSteps int  `json:"totalSteps"`
}

// Status is the reply to GET_STATUS. It doubles as the liveness probe for
// collaborators that only care whether a session is active.
type Status struct {
	IsPlaying   bool   `json:"isPlaying"`
	IsRecording bool   `json:"isRecording"`
	SessionID   string `json:"sessionId,omitempty"`
	Cursor      int    `json:"cursor,omitempty"`
}
