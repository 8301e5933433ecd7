package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mangabridge/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <backup.aib>",
	Short: "Decode an Aidoku backup and summarize its contents",
	Long: `Inspect reads an .aib file with an independent property list decoder
and prints its version, creation time, and record counts. Files written with
native dates are read the same way as files with epoch-millisecond integers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		summary, err := inspect.Summarize(filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		return inspect.Write(os.Stdout, summary, format)
	},
}

func init() {
	inspectCmd.Flags().String("format", "text", "output format: text, yaml, or json")
	rootCmd.AddCommand(inspectCmd)
}
