package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mangabridge/pkg/types"
)

// versionCmd reports the build version and the Aidoku backup format version
// stamped into every encoded document.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mangabridge build and Aidoku backup format versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine(version))
	},
}

func versionLine(build string) string {
	return fmt.Sprintf("mangabridge %s (aidoku backup format %s)", build, types.AidokuFormatVersion)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
