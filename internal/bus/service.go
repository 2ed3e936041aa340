package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/stepreplay/internal/replay"
	"github.com/nextlevelbuilder/stepreplay/internal/session"
	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

// DefaultCoalesceWindow is the quiet window for keystroke coalescing.
const DefaultCoalesceWindow = 400 * time.Millisecond

// DefaultDedupeTTL bounds how long handled command IDs are remembered.
const DefaultDedupeTTL = 5 * time.Minute

// Service is the command-side of the replay process: it consumes commands
// from the bus, owns the current session and recording state, and broadcasts
// progress events. Recording and playback are mutually exclusive; a command
// that would start the second mode is rejected as busy. It implements
// session.Reporter, so per-step outcomes flow straight onto the bus.
type Service struct {
	bus         *MessageBus
	env         session.Environment
	sessionOpts []session.Option
	logger      *slog.Logger
	dedupe      *CommandDedupe
	coalescer   *RecordCoalescer

	// group joins playback goroutines so Run does not return with a
	// session still driving the browser.
	group errgroup.Group

	mu        sync.Mutex
	current   *session.Controller
	recording bool
	recorded  []protocol.StepRecord
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSessionOptions passes options through to every controller the service
// creates.
func WithSessionOptions(opts ...session.Option) ServiceOption {
	return func(s *Service) { s.sessionOpts = opts }
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithCoalesceWindow sets the keystroke coalescing window. Zero disables
// coalescing.
func WithCoalesceWindow(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.coalescer = NewRecordCoalescer(d, s.acceptRecord)
	}
}

// NewService creates a Service bound to b and env.
func NewService(b *MessageBus, env session.Environment, opts ...ServiceOption) *Service {
	s := &Service{
		bus:    b,
		env:    env,
		logger: slog.Default(),
		dedupe: NewCommandDedupe(DefaultDedupeTTL, 1024),
	}
	s.coalescer = NewRecordCoalescer(DefaultCoalesceWindow, s.acceptRecord)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run consumes commands until ctx is cancelled or the bus closes, then
// waits for any in-flight playback session before returning.
func (s *Service) Run(ctx context.Context) error {
	for {
		cmd, ok := s.bus.ConsumeCommand(ctx)
		if !ok {
			s.coalescer.Stop()
			if err := s.group.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		}
		if s.dedupe.IsDuplicate(cmd.ID) {
			s.logger.Debug("dropping redelivered command", "id", cmd.ID, "name", cmd.Name)
			continue
		}
		s.bus.PublishReply(s.handle(ctx, cmd))
	}
}

func (s *Service) handle(ctx context.Context, cmd Command) Reply {
	switch cmd.Name {
	case protocol.CmdStartPlayback:
		return s.startPlayback(ctx, cmd)
	case protocol.CmdStopPlayback:
		return s.stopPlayback(cmd)
	case protocol.CmdStartRecording:
		return s.startRecording(cmd)
	case protocol.CmdStopRecording:
		return s.stopRecording(cmd)
	case protocol.CmdGetStatus:
		return s.status(cmd)
	default:
		return Reply{CommandID: cmd.ID, Code: protocol.ErrInvalidRequest,
			Detail: "unknown command: " + cmd.Name}
	}
}

func (s *Service) startPlayback(ctx context.Context, cmd Command) Reply {
	if len(cmd.Steps) == 0 {
		return Reply{CommandID: cmd.ID, Code: protocol.ErrInvalidRequest,
			Detail: "no steps"}
	}
	steps := make([]replay.Step, len(cmd.Steps))
	for i, rec := range cmd.Steps {
		action, ok := replay.ParseAction(rec.Action)
		if !ok {
			return Reply{CommandID: cmd.ID, Code: protocol.ErrInvalidRequest,
				Detail: "unknown action: " + rec.Action}
		}
		steps[i] = replay.Step{
			Action:      action,
			Target:      rec.Target,
			Value:       rec.Value,
			Description: rec.Description,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Running() {
		return Reply{CommandID: cmd.ID, Code: protocol.ErrBusy,
			Detail: "a playback session is already running"}
	}
	if s.recording {
		return Reply{CommandID: cmd.ID, Code: protocol.ErrBusy,
			Detail: "a recording is in progress"}
	}

	opts := append([]session.Option{session.WithReporter(s)}, s.sessionOpts...)
	ctl := session.New(s.env, steps, cmd.ContinueOnError, opts...)
	s.current = ctl

	s.group.Go(func() error {
		if _, err := ctl.Run(ctx); err != nil {
			s.logger.Error("playback did not start", "session", ctl.ID(), "error", err)
			s.bus.Broadcast(Event{
				Name: protocol.EventPlaybackComplete,
				PlaybackComplete: &protocol.PlaybackComplete{
					Success:    false,
					FailedStep: -1,
					TotalSteps: len(steps),
				},
			})
			return err
		}
		return nil
	})

	s.logger.Info("playback accepted", "session", ctl.ID(), "steps", len(steps))
	return Reply{CommandID: cmd.ID, OK: true, SessionID: ctl.ID()}
}

func (s *Service) stopPlayback(cmd Command) Reply {
	s.mu.Lock()
	ctl := s.current
	s.mu.Unlock()
	if ctl == nil || !ctl.Running() {
		return Reply{CommandID: cmd.ID, Code: protocol.ErrNotPlaying,
			Detail: "no playback session is running"}
	}
	ctl.Stop()
	return Reply{CommandID: cmd.ID, OK: true, SessionID: ctl.ID()}
}

func (s *Service) startRecording(cmd Command) Reply {
	s.mu.Lock()
	if s.current != nil && s.current.Running() {
		s.mu.Unlock()
		return Reply{CommandID: cmd.ID, Code: protocol.ErrBusy,
			Detail: "a playback session is running"}
	}
	s.recording = true
	s.recorded = nil
	s.mu.Unlock()
	s.logger.Info("recording started")
	return Reply{CommandID: cmd.ID, OK: true}
}

func (s *Service) stopRecording(cmd Command) Reply {
	s.coalescer.Stop()
	s.mu.Lock()
	s.recording = false
	n := len(s.recorded)
	s.mu.Unlock()
	s.logger.Info("recording stopped", "steps", n)
	return Reply{CommandID: cmd.ID, OK: true}
}

func (s *Service) status(cmd Command) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &protocol.Status{IsRecording: s.recording}
	if s.current != nil {
		st.IsPlaying = s.current.Running()
		st.SessionID = s.current.ID()
		st.Cursor = s.current.Cursor()
	}
	return Reply{CommandID: cmd.ID, OK: true, Status: st}
}

// RecordStep ingests one captured step. Records are dropped unless a
// recording is active; keystroke records coalesce before being accepted.
func (s *Service) RecordStep(rec protocol.StepRecord) {
	s.mu.Lock()
	recording := s.recording
	s.mu.Unlock()
	if !recording {
		return
	}
	s.coalescer.Push(rec)
}

// Recorded returns a copy of the steps captured by the current (or last)
// recording.
func (s *Service) Recorded() []protocol.StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.StepRecord, len(s.recorded))
	copy(out, s.recorded)
	return out
}

// acceptRecord is the coalescer's flush target: the record becomes part of
// the recording and is echoed to subscribers.
func (s *Service) acceptRecord(rec protocol.StepRecord) {
	s.mu.Lock()
	s.recorded = append(s.recorded, rec)
	s.mu.Unlock()
	s.bus.Broadcast(Event{Name: protocol.EventStepRecorded, StepRecorded: &rec})
}

// StepComplete implements session.Reporter.
func (s *Service) StepComplete(index int, step replay.Step, st session.Status, err error) {
	payload := &protocol.StepComplete{
		Index:  index,
		Action: string(step.Action),
		Status: string(st),
	}
	if err != nil {
		payload.Error = session.ErrorCode(err) + ": " + err.Error()
	}
	s.bus.Broadcast(Event{Name: protocol.EventStepComplete, StepComplete: payload})
}

// PlaybackComplete implements session.Reporter.
func (s *Service) PlaybackComplete(r session.Report) {
	s.bus.Broadcast(Event{
		Name: protocol.EventPlaybackComplete,
		PlaybackComplete: &protocol.PlaybackComplete{
			Success:    r.Success,
			Aborted:    r.Aborted,
			FailedStep: r.FailedStep,
			TotalSteps: r.TotalSteps,
		},
	})
}
