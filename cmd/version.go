package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stepreplay version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stepreplay %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
