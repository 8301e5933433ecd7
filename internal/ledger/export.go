// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mangabridge/pkg/types"
)

const exportLimit = 100000

// ExportEntry is one run as written by the exporters. Durations are written
// in milliseconds so the output stays readable.
type ExportEntry struct {
	ID          string                 `json:"id" yaml:"id"`
	Input       string                 `json:"input" yaml:"input"`
	InputSHA256 string                 `json:"input_sha256,omitempty" yaml:"input_sha256,omitempty"`
	Output      string                 `json:"output,omitempty" yaml:"output,omitempty"`
	Origin      string                 `json:"origin" yaml:"origin"`
	Status      types.ConversionStatus `json:"status" yaml:"status"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Counts      types.Counts           `json:"counts" yaml:"counts"`
	Warnings    int                    `json:"warnings" yaml:"warnings"`
	StartedAt   string                 `json:"started_at" yaml:"started_at"`
	DurationMS  int64                  `json:"duration_ms" yaml:"duration_ms"`
}

// ExportYAML writes the runs matching opts to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the runs matching opts to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Entry converts a run to its export form.
func Entry(r types.Run) ExportEntry {
	return ExportEntry{
		ID:          r.ID,
		Input:       r.Input,
		InputSHA256: r.InputSHA256,
		Output:      r.Output,
		Origin:      r.Origin,
		Status:      r.Status,
		Error:       r.Error,
		Counts:      r.Counts,
		Warnings:    r.Warnings,
		StartedAt:   r.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMS:  r.Duration.Milliseconds(),
	}
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	runs, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		entries[i] = Entry(r)
	}
	return entries, nil
}
