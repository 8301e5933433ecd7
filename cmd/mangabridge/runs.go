// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mangabridge/internal/ledger"
	"github.com/pdiddy/mangabridge/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query the ledger of past conversions (list, show, export)",
	Long: `Runs reads the local SQLite ledger that convert and serve record into.
Only run metadata is stored: input name and digest, output name, status,
record counts, and timing.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversion runs, newest first",
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := runQueryFromFlags(cmd)
	if err != nil {
		return err
	}
	runs, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		entries := make([]ledger.ExportEntry, len(runs))
		for i, r := range runs {
			entries[i] = ledger.Entry(r)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return formatRunTable(os.Stdout, runs)
}

func formatRunTable(w io.Writer, runs []types.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-6s  %-7s  %-8s  %s\n",
		"ID", "Started", "Status", "Origin", "Library", "Warnings", "Input")
	for _, r := range runs {
		input := r.Input
		if len(input) > 40 {
			input = "..." + input[len(input)-37:]
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-6s  %-7d  %-8d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Origin,
			r.Counts.Library, r.Warnings, input)
	}
	_, err := fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return err
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one conversion run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(ledger.Entry(run)); err != nil {
			return err
		}
		return enc.Close()
	},
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to YAML or JSON",
	Long: `Export writes every run matching the filters to standard output, or to
--out when given.`,
	RunE: runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := runQueryFromFlags(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(context.Background(), w, opts)
	case "json":
		err = store.ExportJSON(context.Background(), w, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
	}
	return nil
}

// --- shared helpers ---

func openLedger() (*ledger.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return ledger.NewStore(cfg.Ledger)
}

func runQueryFromFlags(cmd *cobra.Command) (ledger.QueryOptions, error) {
	status, _ := cmd.Flags().GetString("status")
	origin, _ := cmd.Flags().GetString("origin")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := ledger.QueryOptions{
		Status:     types.ConversionStatus(status),
		Origin:     origin,
		MaxResults: limit,
	}
	switch opts.Status {
	case "", types.ConversionDone, types.ConversionSkipped, types.ConversionFailed:
	default:
		return opts, fmt.Errorf("unknown status %q: use converted, skipped, or failed", status)
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	return opts, nil
}

func init() {
	runsCmd.PersistentFlags().String("ledger", "", "ledger database path (default ~/.config/mangabridge/runs.db)")
	runsCmd.PersistentFlags().String("status", "", "filter by status: converted, skipped, failed")
	runsCmd.PersistentFlags().String("origin", "", "filter by origin: cli or http")
	runsCmd.PersistentFlags().Duration("since", 0, "only runs started within this duration (e.g. 24h)")
	mustBind("ledger.path", runsCmd.PersistentFlags().Lookup("ledger"))

	runsListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use default)")
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")

	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	runsExportCmd.Flags().String("out", "", "write to this file instead of standard output")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)

	rootCmd.AddCommand(runsCmd)
}
