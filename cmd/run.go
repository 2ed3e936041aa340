package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/stepreplay/internal/config"
	"github.com/nextlevelbuilder/stepreplay/internal/replay"
	"github.com/nextlevelbuilder/stepreplay/internal/resolver"
	"github.com/nextlevelbuilder/stepreplay/internal/session"
	storefile "github.com/nextlevelbuilder/stepreplay/internal/store/file"
	"github.com/nextlevelbuilder/stepreplay/pkg/browser"
	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

func runCmd() *cobra.Command {
	var (
		stepsPath       string
		headless        bool
		continueOnError bool
		attach          string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a recorded step file against a live browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			setupLogging(cfg)

			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.Replay.ContinueOnError = continueOnError
			}
			if attach != "" {
				cfg.Browser.DebugURL = attach
			}
			if stepsPath == "" {
				stepsPath = cfg.StepsFile
			}
			return runReplay(cfg, stepsPath)
		},
	}
	cmd.Flags().StringVarP(&stepsPath, "steps", "s", "", "steps CSV file (default from config)")
	cmd.Flags().BoolVar(&headless, "headless", false, "run the browser headless")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep going past failed steps")
	cmd.Flags().StringVar(&attach, "attach", "", "DevTools URL of a running browser to attach to")
	return cmd
}

func runReplay(cfg *config.Config, stepsPath string) error {
	records, err := storefile.NewStepFile(stepsPath).Load()
	if err != nil {
		return err
	}
	steps, err := toSteps(records)
	if err != nil {
		return err
	}

	// Config edits while the replay runs re-apply the live-updatable
	// knobs; session-scoped knobs apply from the next run.
	if w, werr := config.NewWatcher(resolveConfigPath()); werr == nil {
		w.OnChange(applyReload)
		if serr := w.Start(); serr != nil {
			slog.Warn("config watcher not started", "error", serr)
		} else {
			defer w.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := browser.New(
		browser.WithHeadless(cfg.Browser.Headless),
		browser.WithBinPath(cfg.Browser.BinPath),
		browser.WithDebugURL(cfg.Browser.DebugURL),
		browser.WithPageLoadTimeout(cfg.Browser.PageLoadTimeout()),
	)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Stop(context.Background())

	ctl := session.New(browserEnv{mgr}, steps, cfg.Replay.ContinueOnError,
		session.WithStepSettle(cfg.Replay.StepSettle()),
		session.WithExecutorOptions(
			replay.WithResolver(resolver.New(
				resolver.WithInterval(cfg.Replay.PollInterval()),
				resolver.WithBudget(cfg.Replay.ResolveBudget()),
			)),
			replay.WithPostLoadSettle(cfg.Replay.PostLoadSettle()),
			replay.WithKeyDelay(cfg.Replay.KeyDelay()),
		),
	)

	report, err := ctl.Run(ctx)
	if err != nil {
		return err
	}
	printReport(steps, report)
	if !report.Success {
		os.Exit(1)
	}
	return nil
}

func printReport(steps []replay.Step, r *session.Report) {
	for i, o := range r.Outcomes {
		line := fmt.Sprintf("%3d  %-13s %-40s %s", i, steps[i].Action, steps[i].Target, o.Status)
		if o.Err != nil {
			line += "  " + session.ErrorCode(o.Err)
		}
		fmt.Println(line)
	}
	switch {
	case r.Aborted:
		fmt.Printf("aborted after %d of %d steps\n", doneCount(r), r.TotalSteps)
	case r.Success:
		fmt.Printf("ok: %d steps\n", r.TotalSteps)
	default:
		fmt.Printf("failed at step %d of %d\n", r.FailedStep, r.TotalSteps)
	}
}

func doneCount(r *session.Report) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == session.StatusSuccess || o.Status == session.StatusFailed {
			n++
		}
	}
	return n
}

func toSteps(records []protocol.StepRecord) ([]replay.Step, error) {
	steps := make([]replay.Step, len(records))
	for i, rec := range records {
		action, ok := replay.ParseAction(rec.Action)
		if !ok {
			return nil, fmt.Errorf("row %d: unknown action %q", i+1, rec.Action)
		}
		steps[i] = replay.Step{
			Action:      action,
			Target:      rec.Target,
			Value:       rec.Value,
			Description: rec.Description,
		}
	}
	return steps, nil
}

// browserEnv adapts the browser manager to the session environment
// capability.
type browserEnv struct {
	mgr *browser.Manager
}

func (e browserEnv) Context(ctx context.Context) (replay.Target, error) {
	return e.mgr.Tab(ctx)
}

func (e browserEnv) Alive(ctx context.Context) bool {
	return e.mgr.Alive(ctx)
}
