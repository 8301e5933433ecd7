// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backup

import (
	"errors"

	"github.com/pdiddy/mangabridge/internal/mapping"
)

var (
	// ErrMissingLibrary means no library entry survived mapping.
	ErrMissingLibrary = errors.New("no valid library entries found in backup")
	// ErrMissingManga means no manga record survived mapping.
	ErrMissingManga = errors.New("no valid manga entries found in backup")
)

// ValidationError reports a structural requirement the mapped entities do
// not meet. It wraps ErrMissingLibrary or ErrMissingManga.
type ValidationError struct {
	Collection string
	Err        error
}

func (e *ValidationError) Error() string {
	return "invalid backup: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks that the mapped library and manga lists are non-empty.
func Validate(ents mapping.Entities) error {
	if len(ents.Library) == 0 {
		return &ValidationError{Collection: "library", Err: ErrMissingLibrary}
	}
	if len(ents.Manga) == 0 {
		return &ValidationError{Collection: "manga", Err: ErrMissingManga}
	}
	return nil
}
