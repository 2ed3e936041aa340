package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/stepreplay/internal/replay"
	storefile "github.com/nextlevelbuilder/stepreplay/internal/store/file"
	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

func stepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Inspect and normalize step files",
	}
	cmd.AddCommand(stepsCheckCmd())
	cmd.AddCommand(stepsFmtCmd())
	return cmd
}

func stepsCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a step file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storefile.NewStepFile(args[0]).Load()
			if err != nil {
				return err
			}
			problems := checkSteps(records)
			for _, p := range problems {
				fmt.Fprintln(os.Stderr, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) in %s", len(problems), args[0])
			}
			fmt.Printf("%s: %d steps ok\n", args[0], len(records))
			return nil
		},
	}
	return cmd
}

func stepsFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a step file in normalized form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf := storefile.NewStepFile(args[0])
			records, err := sf.Load()
			if err != nil {
				return err
			}
			if write {
				return sf.Save(records)
			}
			return storefile.Encode(os.Stdout, records)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}

// checkSteps reports per-row problems: unknown actions and missing required
// fields.
func checkSteps(records []protocol.StepRecord) []string {
	var problems []string
	rowf := func(i int, format string, args ...any) {
		problems = append(problems, fmt.Sprintf("row %d: %s", i+1, fmt.Sprintf(format, args...)))
	}
	for i, rec := range records {
		action, ok := replay.ParseAction(rec.Action)
		if !ok {
			rowf(i, "unknown action %q", rec.Action)
			continue
		}
		switch action {
		case replay.ActionOpen:
			if rec.Target == "" && rec.Value == "" {
				rowf(i, "OPEN requires a url")
			}
		case replay.ActionWait:
			if rec.Target == "" && rec.Value == "" {
				rowf(i, "WAIT requires a locator or a duration")
			}
		case replay.ActionPress:
			if rec.Value == "" {
				rowf(i, "PRESS requires a key")
			}
		case replay.ActionSelect:
			if rec.Target == "" || rec.Value == "" {
				rowf(i, "SELECT requires a locator and a value")
			}
		default:
			if rec.Target == "" {
				rowf(i, "%s requires a locator", action)
			}
		}
	}
	return problems
}
