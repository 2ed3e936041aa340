package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	storefile "github.com/nextlevelbuilder/stepreplay/internal/store/file"
)

type statusReport struct {
	ConfigPath      string `json:"configPath"`
	StepsFile       string `json:"stepsFile"`
	Headless        bool   `json:"headless"`
	PollInterval    string `json:"pollInterval"`
	ResolveBudget   string `json:"resolveBudget"`
	ContinueOnError bool   `json:"continueOnError"`
	Steps           int    `json:"steps"`
	Problems        int    `json:"problems"`
	StepsError      string `json:"stepsError,omitempty"`
}

func statusCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resolved configuration and step file summary",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()

			rep := statusReport{
				ConfigPath:      resolveConfigPath(),
				StepsFile:       cfg.StepsFile,
				Headless:        cfg.Browser.Headless,
				PollInterval:    cfg.Replay.PollInterval().String(),
				ResolveBudget:   cfg.Replay.ResolveBudget().String(),
				ContinueOnError: cfg.Replay.ContinueOnError,
			}
			records, err := storefile.NewStepFile(cfg.StepsFile).Load()
			if err != nil {
				rep.StepsError = err.Error()
			} else {
				rep.Steps = len(records)
				rep.Problems = len(checkSteps(records))
			}

			if jsonOutput {
				data, _ := json.MarshalIndent(rep, "", "  ")
				fmt.Println(string(data))
				return
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "config\t%s\n", rep.ConfigPath)
			fmt.Fprintf(tw, "steps file\t%s\n", rep.StepsFile)
			fmt.Fprintf(tw, "headless\t%v\n", rep.Headless)
			fmt.Fprintf(tw, "poll interval\t%s\n", rep.PollInterval)
			fmt.Fprintf(tw, "resolve budget\t%s\n", rep.ResolveBudget)
			fmt.Fprintf(tw, "continue on error\t%v\n", rep.ContinueOnError)
			if rep.StepsError != "" {
				fmt.Fprintf(tw, "steps\tunavailable (%s)\n", rep.StepsError)
			} else {
				fmt.Fprintf(tw, "steps\t%d\n", rep.Steps)
				if rep.Problems > 0 {
					fmt.Fprintf(tw, "problems\t%d (run 'stepreplay steps check')\n", rep.Problems)
				}
			}
			tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
