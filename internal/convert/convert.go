// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the backup pipeline over files on disk, writing .aib
// output and optional YAML reports to an output directory.
package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mangabridge/internal/backup"
	"github.com/pdiddy/mangabridge/pkg/types"
)

const (
	// OriginCLI marks runs started from the command line.
	OriginCLI = "cli"

	reportSuffix = ".report.yaml"
)

// Recorder persists conversion runs. The ledger store implements it.
type Recorder interface {
	Record(ctx context.Context, run types.Run) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Runs      []types.Run
}

// Total returns the total number of backups processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any backup failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Report is the YAML document written next to a converted backup.
type Report struct {
	Input     string                 `yaml:"input"`
	Output    string                 `yaml:"output,omitempty"`
	Status    types.ConversionStatus `yaml:"status"`
	Shape     string                 `yaml:"shape,omitempty"`
	Counts    types.Counts           `yaml:"counts"`
	Warnings  int                    `yaml:"warnings"`
	Error     string                 `yaml:"error,omitempty"`
	Log       types.Log              `yaml:"log"`
	Converted time.Time              `yaml:"converted_at"`
}

// ConvertFile converts the backup at path and writes the result to
// cfg.OutDir. When name is empty the pipeline's dated file name is used.
// An existing output is left alone unless cfg.Force is set.
func ConvertFile(p *backup.Pipeline, path, name string, cfg types.ConvertConfig, w io.Writer) types.Run {
	started := time.Now()
	run := types.Run{
		ID:        uuid.NewString(),
		Input:     path,
		Origin:    OriginCLI,
		StartedAt: started.UTC(),
	}
	base := filepath.Base(path)
	var res *backup.Result
	finish := func(status types.ConversionStatus, err error) types.Run {
		run.Status = status
		if err != nil {
			run.Error = err.Error()
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		}
		run.Duration = time.Since(started)
		if cfg.Report && status != types.ConversionSkipped {
			if err := writeReport(cfg.OutDir, base, run, res); err != nil {
				slog.Warn("writing report failed", "input", path, "error", err)
			}
		}
		return run
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return finish(types.ConversionFailed, fmt.Errorf("reading %s: %w", path, err))
	}
	sum := sha256.Sum256(raw)
	run.InputSHA256 = hex.EncodeToString(sum[:])

	res, err = p.Run(raw)
	run.Warnings = res.Warnings()
	if err != nil {
		return finish(types.ConversionFailed, err)
	}
	if name == "" {
		name = res.FileName
	}
	run.Output = name
	run.Counts = res.Backup.Counts()

	outPath := filepath.Join(cfg.OutDir, name)
	if _, err := os.Stat(outPath); err == nil && !cfg.Force {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return finish(types.ConversionSkipped, nil)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return finish(types.ConversionFailed, err)
	}
	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		return finish(types.ConversionFailed, err)
	}

	for _, d := range res.Log.Warnings() {
		fmt.Fprintf(w, "  %s\n", d)
	}
	fmt.Fprintf(w, "converted: %s -> %s\n", base, name)
	return finish(types.ConversionDone, nil)
}

// ConvertBatch converts every path, printing per-file status to w and
// returning a summary. With more than one input the output names carry the
// input's base name so they do not collide. Runs are handed to rec when it
// is non-nil; recording failures are logged and do not fail the batch.
func ConvertBatch(ctx context.Context, p *backup.Pipeline, paths []string, cfg types.ConvertConfig, rec Recorder, w io.Writer) BatchResult {
	var result BatchResult
	for _, path := range paths {
		name := ""
		if len(paths) > 1 {
			name = BatchFileName(path, p)
		}
		run := ConvertFile(p, path, name, cfg, w)
		switch run.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
		result.Runs = append(result.Runs, run)

		if rec != nil {
			if err := rec.Record(ctx, run); err != nil {
				slog.Warn("recording run failed", "run", run.ID, "error", err)
			}
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// BatchFileName returns the output name for path within a multi-file batch:
// the dated name with the input's base name appended.
func BatchFileName(path string, p *backup.Pipeline) string {
	dated := strings.TrimSuffix(p.FileName(), backup.FileExt)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return dated + "-" + base + backup.FileExt
}

// ReportPath returns where the report for input is written.
func ReportPath(outDir, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+reportSuffix)
}

// writeReport records run next to the output. res is nil when the input
// could not be read.
func writeReport(outDir, input string, run types.Run, res *backup.Result) error {
	report := Report{
		Input:     run.Input,
		Output:    run.Output,
		Status:    run.Status,
		Counts:    run.Counts,
		Warnings:  run.Warnings,
		Error:     run.Error,
		Converted: run.StartedAt,
	}
	if res != nil {
		report.Log = res.Log
		if res.OK() {
			report.Shape = res.Shape.String()
		}
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(ReportPath(outDir, input), data, 0o644)
}
