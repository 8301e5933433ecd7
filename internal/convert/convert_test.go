// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mangabridge/internal/backup"
	"github.com/pdiddy/mangabridge/pkg/types"
)

const validBackup = `{
  "library": [{"id": "m1", "collections": ["Reading"]}],
  "storedContents": [{"id": "m1", "sourceId": "src.en", "title": "One", "creators": ["Alice"]}]
}`

func testPipeline() *backup.Pipeline {
	return backup.New(backup.Options{
		Now: func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) },
	})
}

// writeInput creates a backup file under dir and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		preCreate  bool
		force      bool
		wantStatus types.ConversionStatus
		wantLog    string
	}{
		{
			name:       "successful conversion",
			input:      validBackup,
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
		},
		{
			name:       "skip existing output",
			input:      validBackup,
			preCreate:  true,
			wantStatus: types.ConversionSkipped,
			wantLog:    "skipped:",
		},
		{
			name:       "force overwrites existing output",
			input:      validBackup,
			preCreate:  true,
			force:      true,
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
		},
		{
			name:       "malformed input",
			input:      `{"library": `,
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:",
		},
		{
			name:       "empty library",
			input:      `{"library": []}`,
			wantStatus: types.ConversionFailed,
			wantLog:    "no valid library entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			outDir := filepath.Join(tmpDir, "out")
			input := writeInput(t, tmpDir, "suwatte.json", tt.input)

			outPath := filepath.Join(outDir, "Aidoku-2025-03-14.aib")
			if tt.preCreate {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(outPath, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var log bytes.Buffer
			cfg := types.ConvertConfig{OutDir: outDir, Force: tt.force}
			run := ConvertFile(testPipeline(), input, "", cfg, &log)

			if run.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", run.Status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
			if run.ID == "" {
				t.Error("run should have an id")
			}
			if run.InputSHA256 == "" {
				t.Error("run should carry the input digest")
			}

			if tt.wantStatus == types.ConversionDone {
				data, err := os.ReadFile(outPath)
				if err != nil {
					t.Fatalf("reading output: %v", err)
				}
				if !bytes.HasPrefix(data, []byte("bplist00")) {
					t.Errorf("output does not start with the bplist magic: %q", data[:8])
				}
				if run.Counts.Library != 1 {
					t.Errorf("library count = %d, want 1", run.Counts.Library)
				}
			}
			if tt.wantStatus == types.ConversionFailed && run.Error == "" {
				t.Error("failed run should carry the error message")
			}
		})
	}
}

func TestConvertFile_MissingInput(t *testing.T) {
	var log bytes.Buffer
	run := ConvertFile(testPipeline(), filepath.Join(t.TempDir(), "nope.json"), "", types.ConvertConfig{OutDir: t.TempDir()}, &log)
	if run.Status != types.ConversionFailed {
		t.Errorf("status = %q, want failed", run.Status)
	}
	if run.InputSHA256 != "" {
		t.Error("digest should be empty when the input cannot be read")
	}
}

func TestConvertFile_Report(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeInput(t, tmpDir, "suwatte.json", validBackup)
	cfg := types.ConvertConfig{OutDir: tmpDir, Report: true}

	var log bytes.Buffer
	run := ConvertFile(testPipeline(), input, "", cfg, &log)
	if run.Status != types.ConversionDone {
		t.Fatalf("status = %q, want converted", run.Status)
	}

	data, err := os.ReadFile(ReportPath(tmpDir, input))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	if report.Output != "Aidoku-2025-03-14.aib" {
		t.Errorf("report output = %q", report.Output)
	}
	if report.Shape != "legacy" {
		t.Errorf("report shape = %q, want legacy", report.Shape)
	}
	if report.Counts.Manga != 1 || report.Counts.Categories != 1 {
		t.Errorf("report counts = %+v", report.Counts)
	}
	if len(report.Log) == 0 {
		t.Error("report should include the conversion log")
	}
}

func TestConvertFile_ReportOnFailure(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeInput(t, tmpDir, "broken.json", `[1, 2]`)
	cfg := types.ConvertConfig{OutDir: tmpDir, Report: true}

	var log bytes.Buffer
	ConvertFile(testPipeline(), input, "", cfg, &log)

	data, err := os.ReadFile(ReportPath(tmpDir, input))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	if report.Status != types.ConversionFailed {
		t.Errorf("report status = %q, want failed", report.Status)
	}
	last := report.Log[len(report.Log)-1]
	if last.Level != types.LevelError || last.Code != types.CodeParse {
		t.Errorf("last log entry = %+v, want a parse error", last)
	}
}

func readReport(t *testing.T, path string) Report {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	return report
}

func TestConvertFile_ReportSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeInput(t, tmpDir, "suwatte.json", validBackup)
	cfg := types.ConvertConfig{OutDir: tmpDir, Report: true}
	reportPath := ReportPath(tmpDir, input)

	var log bytes.Buffer
	if run := ConvertFile(testPipeline(), input, "", cfg, &log); run.Status != types.ConversionDone {
		t.Fatalf("first run status = %q, want converted", run.Status)
	}
	if err := os.WriteFile(reportPath, []byte("kept: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	run := ConvertFile(testPipeline(), input, "", cfg, &log)
	if run.Status != types.ConversionSkipped {
		t.Fatalf("second run status = %q, want skipped", run.Status)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "kept: true\n" {
		t.Errorf("skipped run rewrote the report:\n%s", data)
	}

	cfg.Force = true
	if run := ConvertFile(testPipeline(), input, "", cfg, &log); run.Status != types.ConversionDone {
		t.Fatalf("forced run status = %q, want converted", run.Status)
	}
	if report := readReport(t, reportPath); report.Status != types.ConversionDone {
		t.Errorf("forced report status = %q, want converted", report.Status)
	}
}

func TestConvertFile_ReportOnWriteFailure(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeInput(t, tmpDir, "suwatte.json", validBackup)
	if err := os.Mkdir(filepath.Join(tmpDir, "taken.aib"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := types.ConvertConfig{OutDir: tmpDir, Report: true, Force: true}

	var log bytes.Buffer
	run := ConvertFile(testPipeline(), input, "taken.aib", cfg, &log)
	if run.Status != types.ConversionFailed {
		t.Fatalf("status = %q, want failed", run.Status)
	}

	report := readReport(t, ReportPath(tmpDir, input))
	if report.Status != types.ConversionFailed {
		t.Errorf("report status = %q, want failed", report.Status)
	}
	if report.Error == "" {
		t.Error("report should carry the write error")
	}
}

// memoryRecorder collects runs in memory.
type memoryRecorder struct {
	runs []types.Run
	err  error
}

func (m *memoryRecorder) Record(_ context.Context, run types.Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")
	p := testPipeline()

	a := writeInput(t, tmpDir, "a.json", validBackup)
	b := writeInput(t, tmpDir, "b.json", validBackup)
	c := writeInput(t, tmpDir, "c.json", `not json`)

	// Pre-create output for "b" to trigger skip.
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, BatchFileName(b, p)), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &memoryRecorder{}
	var log bytes.Buffer
	result := ConvertBatch(context.Background(), p, []string{a, b, c}, types.ConvertConfig{OutDir: outDir}, rec, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}
	if len(rec.runs) != 3 {
		t.Errorf("recorded %d runs, want 3", len(rec.runs))
	}

	if _, err := os.Stat(filepath.Join(outDir, "Aidoku-2025-03-14-a.aib")); err != nil {
		t.Errorf("expected output for a: %v", err)
	}
	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("batch output should contain summary line")
	}
}

func TestConvertBatch_RecorderErrorDoesNotFail(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeInput(t, tmpDir, "a.json", validBackup)

	rec := &memoryRecorder{err: errors.New("database is locked")}
	var log bytes.Buffer
	result := ConvertBatch(context.Background(), testPipeline(), []string{input}, types.ConvertConfig{OutDir: tmpDir}, rec, &log)

	if result.HasFailures() {
		t.Errorf("recording errors should not fail the batch: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "Aidoku-2025-03-14.aib")); err != nil {
		t.Errorf("single-file batch should use the dated name: %v", err)
	}
}

func TestBatchFileName(t *testing.T) {
	got := BatchFileName("/backups/weekly.v2.json", testPipeline())
	if got != "Aidoku-2025-03-14-weekly.v2.aib" {
		t.Errorf("BatchFileName = %q", got)
	}
}
