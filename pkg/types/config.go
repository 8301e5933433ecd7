// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	// OutDir is the directory .aib files and reports are written to.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// Force overwrites an existing output file instead of skipping the input.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	// Report writes a <name>.report.yaml next to each output.
	Report bool `json:"report" yaml:"report" mapstructure:"report"`

	// NativeDates writes timestamps as plist dates instead of epoch-millisecond
	// integers.
	NativeDates bool `json:"native_dates" yaml:"native_dates" mapstructure:"native_dates"`
}

// ServeConfig holds settings for the HTTP upload shell.
type ServeConfig struct {
	// Addr is the listen address (default ":8190").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps the accepted request body size (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// NativeDates mirrors ConvertConfig.NativeDates for uploads.
	NativeDates bool `json:"native_dates" yaml:"native_dates" mapstructure:"native_dates"`
}

// LedgerConfig holds settings for the run ledger.
type LedgerConfig struct {
	// Enabled turns run recording on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file (default ~/.config/mangabridge/runs.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds operational logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from flags, environment, and the config file.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Serve   ServeConfig   `json:"serve" yaml:"serve" mapstructure:"serve"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
