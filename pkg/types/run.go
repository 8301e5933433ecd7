// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one backup.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// Run records one conversion attempt. The ledger persists these; entities
// from the backup itself are never stored.
type Run struct {
	// ID is a random UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	// Input names the source backup (file path or upload name).
	Input string `json:"input" yaml:"input"`

	// InputSHA256 is the hex digest of the raw input bytes.
	InputSHA256 string `json:"input_sha256" yaml:"input_sha256"`

	// Output is the target file name, empty on failure.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Origin identifies which shell ran the conversion ("cli" or "http").
	Origin string `json:"origin" yaml:"origin"`

	// Status is the outcome.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Error holds the fatal error message for failed runs.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Counts is the size of the produced document.
	Counts Counts `json:"counts" yaml:"counts"`

	// Warnings is the number of warn-level diagnostics.
	Warnings int `json:"warnings" yaml:"warnings"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
