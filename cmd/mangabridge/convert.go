// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mangabridge/internal/backup"
	"github.com/pdiddy/mangabridge/internal/convert"
	"github.com/pdiddy/mangabridge/internal/ledger"
)

var convertCmd = &cobra.Command{
	Use:   "convert <backup.json>...",
	Short: "Convert Suwatte backups to Aidoku .aib files",
	Long: `Convert reads each Suwatte backup, maps its library, content, chapter, and
progress records to the Aidoku layout, and writes a binary property list to
the output directory.

A single input is written as Aidoku-YYYY-MM-DD.aib. With several inputs each
name also carries the input's base name. Existing outputs are skipped unless
--force is given. Every run is recorded in the ledger unless --no-ledger is
set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	noLedger, _ := cmd.Flags().GetBool("no-ledger")

	var rec convert.Recorder
	if cfg.Ledger.Enabled && !noLedger {
		store, err := ledger.NewStore(cfg.Ledger)
		if err != nil {
			slog.Warn("ledger unavailable, runs will not be recorded", "error", err)
		} else {
			defer store.Close()
			rec = store
		}
	}

	p := backup.New(backup.Options{NativeDates: cfg.Convert.NativeDates})
	result := convert.ConvertBatch(context.Background(), p, args, cfg.Convert, rec, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d backup(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	convertCmd.Flags().String("out-dir", ".", "directory for .aib output and reports")
	convertCmd.Flags().Bool("force", false, "overwrite existing output files")
	convertCmd.Flags().Bool("report", false, "write <name>.report.yaml next to each output")
	convertCmd.Flags().Bool("native-dates", false, "write timestamps as plist dates instead of epoch milliseconds")
	convertCmd.Flags().Bool("no-ledger", false, "do not record runs in the ledger")

	mustBind("convert.out_dir", convertCmd.Flags().Lookup("out-dir"))
	mustBind("convert.force", convertCmd.Flags().Lookup("force"))
	mustBind("convert.report", convertCmd.Flags().Lookup("report"))
	mustBind("convert.native_dates", convertCmd.Flags().Lookup("native-dates"))

	rootCmd.AddCommand(convertCmd)
}
