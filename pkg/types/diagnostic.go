// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Diagnostic codes attached to warnings and errors.
const (
	CodeMissingReference  = "missing-reference"
	CodeInvalidDate       = "invalid-date"
	CodeDuplicateEntry    = "duplicate-entry"
	CodeUnknownCollection = "unknown-collection"
	CodeParse             = "parse"
	CodeValidation        = "validation"
	CodeEncode            = "encode"
)

// Diagnostic is one line of the conversion log. The pipeline produces them;
// shells decide how to render them.
type Diagnostic struct {
	Level   Level  `json:"level" yaml:"level"`
	Code    string `json:"code,omitempty" yaml:"code,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// String renders the diagnostic as a console line.
func (d Diagnostic) String() string {
	switch d.Level {
	case LevelWarn:
		return "warning: " + d.Message
	case LevelError:
		return "ERROR: " + d.Message
	default:
		return d.Message
	}
}

// Log is an ordered list of diagnostics.
type Log []Diagnostic

// Infof appends an info line.
func (l *Log) Infof(format string, args ...any) {
	*l = append(*l, Diagnostic{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning with the given code.
func (l *Log) Warnf(code, format string, args ...any) {
	*l = append(*l, Diagnostic{Level: LevelWarn, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Errorf appends an error with the given code.
func (l *Log) Errorf(code, format string, args ...any) {
	*l = append(*l, Diagnostic{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Append adds diagnostics produced elsewhere.
func (l *Log) Append(ds ...Diagnostic) {
	*l = append(*l, ds...)
}

// Warnings returns the warn-level entries.
func (l Log) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range l {
		if d.Level == LevelWarn {
			out = append(out, d)
		}
	}
	return out
}

// HasCode reports whether any entry carries code.
func (l Log) HasCode(code string) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}
