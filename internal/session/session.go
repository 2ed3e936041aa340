// Package session drives a full playback run: it owns the ordered step list,
// the cursor, the continue-on-error policy, and the per-step outcomes, and it
// performs the resumption protocol when a full-page navigation destroys the
// execution context mid-sequence.
package session

import (
	"context"

	"github.com/nextlevelbuilder/stepreplay/internal/replay"
)

// Status of one step's outcome.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome is the terminal (or in-flight) result of one step.
type Outcome struct {
	Status Status
	Err    error
}

// Environment establishes execution contexts on the controlled tab and
// answers liveness probes. pkg/browser implements it over a live Chrome tab.
type Environment interface {
	// Context (re-)establishes an execution context. Called once at
	// session start and again after each detected teardown.
	Context(ctx context.Context) (replay.Target, error)

	// Alive probes whether the current execution context still responds.
	Alive(ctx context.Context) bool
}

// NavigationCreditPolicy decides what to do with the step that was in flight
// when the environment became unreachable. The default credits it as the
// cause of the navigation and marks it successful. That is a heuristic, not
// a certainty: the navigation could be a timed redirect or otherwise
// unrelated, which is why the policy is injectable rather than hard-coded.
type NavigationCreditPolicy func(step replay.Step, index int) bool

// CreditInFlightStep is the default policy: the not-yet-reported step is
// assumed to have caused the navigation.
func CreditInFlightStep(replay.Step, int) bool { return true }

// Report summarizes a finished session.
type Report struct {
	Success    bool
	Aborted    bool
	FailedStep int // -1 when no step failed
	TotalSteps int
	Outcomes   []Outcome
}

// Reporter receives progress events during a run. Implementations must not
// block; the bus service fans these out to collaborators.
type Reporter interface {
	StepComplete(index int, step replay.Step, status Status, err error)
	PlaybackComplete(r Report)
}

type nopReporter struct{}

func (nopReporter) StepComplete(int, replay.Step, Status, error) {}
func (nopReporter) PlaybackComplete(Report)                      {}
