package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/stepreplay/internal/clock"
	"github.com/nextlevelbuilder/stepreplay/internal/replay"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// DefaultStepSettle is the pause between steps, for interaction stability.
const DefaultStepSettle = 300 * time.Millisecond

// Controller runs one session. It exclusively owns the step list and the
// outcome array; executors receive read-only steps and report back by return
// value, which is what makes rebuilding an executor mid-sequence safe.
type Controller struct {
	id              string
	steps           []replay.Step
	continueOnError bool

	env      Environment
	clk      clock.Clock
	settle   time.Duration
	credit   NavigationCreditPolicy
	reporter Reporter
	execOpts []replay.Option
	logger   *slog.Logger

	mu       sync.Mutex
	outcomes []Outcome
	cursor   int
	running  bool
	cancel   context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the timer capability.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clk = c }
}

// WithStepSettle sets the inter-step settle delay.
func WithStepSettle(d time.Duration) Option {
	return func(ctl *Controller) { ctl.settle = d }
}

// WithCreditPolicy overrides the navigation-credit heuristic.
func WithCreditPolicy(p NavigationCreditPolicy) Option {
	return func(ctl *Controller) { ctl.credit = p }
}

// WithReporter sets the progress event sink.
func WithReporter(r Reporter) Option {
	return func(ctl *Controller) { ctl.reporter = r }
}

// WithExecutorOptions passes options through to each executor the controller
// builds, including the fresh ones created during resumption.
func WithExecutorOptions(opts ...replay.Option) Option {
	return func(ctl *Controller) { ctl.execOpts = opts }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// New creates a Controller for one playback run over steps.
func New(env Environment, steps []replay.Step, continueOnError bool, opts ...Option) *Controller {
	ctl := &Controller{
		id:              uuid.NewString(),
		steps:           steps,
		continueOnError: continueOnError,
		env:             env,
		clk:             clock.Real{},
		settle:          DefaultStepSettle,
		credit:          CreditInFlightStep,
		reporter:        nopReporter{},
		logger:          slog.Default(),
		outcomes:        make([]Outcome, len(steps)),
	}
	for i := range ctl.outcomes {
		ctl.outcomes[i] = Outcome{Status: StatusPending}
	}
	for _, o := range opts {
		o(ctl)
	}
	return ctl
}

// ID returns the session identifier.
func (ctl *Controller) ID() string { return ctl.id }

// Cursor returns the index of the step currently (or last) executing.
func (ctl *Controller) Cursor() int {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.cursor
}

// Running reports whether the session is mid-run.
func (ctl *Controller) Running() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.running
}

// Outcomes returns a copy of the per-step outcomes, always parallel to the
// step list.
func (ctl *Controller) Outcomes() []Outcome {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	out := make([]Outcome, len(ctl.outcomes))
	copy(out, ctl.outcomes)
	return out
}

// Stop requests cancellation. The in-flight action aborts at its next wait
// tick; the session then reports as aborted, not as a failed step.
func (ctl *Controller) Stop() {
	ctl.mu.Lock()
	cancel := ctl.cancel
	ctl.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run executes the session to completion, stop, or terminal failure.
func (ctl *Controller) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctl.mu.Lock()
	if ctl.running {
		ctl.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	ctl.running = true
	ctl.cancel = cancel
	ctl.mu.Unlock()

	defer func() {
		ctl.mu.Lock()
		ctl.running = false
		ctl.cancel = nil
		ctl.mu.Unlock()
	}()

	ctl.logger.Info("playback started",
		"session", ctl.id, "steps", len(ctl.steps), "continueOnError", ctl.continueOnError)

	target, err := ctl.env.Context(ctx)
	if err != nil {
		return nil, fmt.Errorf("establish execution context: %w", err)
	}
	exec := replay.NewExecutor(target, ctl.execOpts...)

	report := Report{FailedStep: -1, TotalSteps: len(ctl.steps)}
	for i := 0; i < len(ctl.steps); i++ {
		step := ctl.steps[i]
		ctl.setOutcome(i, StatusRunning, nil)

		started := ctl.clk.Now()
		err := exec.ExecuteStep(ctx, step)
		elapsed := ctl.clk.Now().Sub(started)

		switch {
		case err == nil:
			ctl.finishStep(i, step, StatusSuccess, nil, elapsed)

		case errors.Is(err, context.Canceled):
			ctl.setOutcome(i, StatusPending, nil)
			return ctl.finishAborted(&report), nil

		case errors.Is(err, dom.ErrContextDestroyed) && !ctl.env.Alive(ctx):
			// Resumption protocol: the environment went away while this
			// step was in flight. Credit the step per policy, then
			// rebuild a fresh executor for the remaining steps.
			ctl.logger.Info("execution context lost, resuming",
				"session", ctl.id, "step", i)

			if ctl.credit(step, i) {
				ctl.finishStep(i, step, StatusSuccess, nil, elapsed)
			} else {
				ctl.finishStep(i, step, StatusFailed, dom.ErrContextDestroyed, elapsed)
				if !ctl.continueOnError {
					report.FailedStep = i
					return ctl.finish(&report), nil
				}
				if report.FailedStep == -1 {
					report.FailedStep = i
				}
			}

			if i+1 >= len(ctl.steps) {
				continue // nothing left to resume into
			}
			target, cerr := ctl.env.Context(ctx)
			if cerr != nil {
				rerr := fmt.Errorf("%w: %v", ErrResumeFailed, cerr)
				ctl.finishStep(i+1, ctl.steps[i+1], StatusFailed, rerr, 0)
				report.FailedStep = i + 1
				return ctl.finish(&report), nil
			}
			ctl.logger.Info("execution context re-established",
				"session", ctl.id, "resumeAt", i+1)
			exec = replay.NewExecutor(target, ctl.execOpts...)
			// The resumed step observes the same inter-step settle as
			// any other step boundary.
			if serr := ctl.clk.Sleep(ctx, ctl.settle); serr != nil {
				return ctl.finishAborted(&report), nil
			}
			continue

		default:
			ctl.finishStep(i, step, StatusFailed, err, elapsed)
			if !ctl.continueOnError {
				report.FailedStep = i
				return ctl.finish(&report), nil
			}
			if report.FailedStep == -1 {
				report.FailedStep = i
			}
		}

		if i < len(ctl.steps)-1 {
			if serr := ctl.clk.Sleep(ctx, ctl.settle); serr != nil {
				return ctl.finishAborted(&report), nil
			}
		}
	}

	return ctl.finish(&report), nil
}

func (ctl *Controller) setOutcome(i int, st Status, err error) {
	ctl.mu.Lock()
	ctl.outcomes[i] = Outcome{Status: st, Err: err}
	if st == StatusRunning && i > ctl.cursor {
		ctl.cursor = i
	}
	ctl.mu.Unlock()
}

func (ctl *Controller) finishStep(i int, step replay.Step, st Status, err error, elapsed time.Duration) {
	ctl.setOutcome(i, st, err)
	if err != nil {
		ctl.logger.Warn("step failed",
			"session", ctl.id, "step", i, "action", step.Action,
			"duration", elapsed, "error", err)
	} else {
		ctl.logger.Debug("step complete",
			"session", ctl.id, "step", i, "action", step.Action,
			"status", st, "duration", elapsed)
	}
	ctl.reporter.StepComplete(i, step, st, err)
}

func (ctl *Controller) finish(r *Report) *Report {
	r.Outcomes = ctl.Outcomes()
	r.Success = r.FailedStep == -1
	ctl.logger.Info("playback complete",
		"session", ctl.id, "success", r.Success, "failedStep", r.FailedStep)
	ctl.reporter.PlaybackComplete(*r)
	return r
}

func (ctl *Controller) finishAborted(r *Report) *Report {
	r.Aborted = true
	r.Outcomes = ctl.Outcomes()
	ctl.logger.Info("playback aborted", "session", ctl.id, "cursor", ctl.Cursor())
	ctl.reporter.PlaybackComplete(*r)
	return r
}
