// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dates coerces the date representations found in Suwatte backups
// into epoch milliseconds.
package dates

import (
	"strings"
	"time"

	"github.com/pdiddy/mangabridge/pkg/types"
)

// layouts are tried in order for textual dates. Layouts without a zone are
// read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalizer converts DateLike values to epoch milliseconds. Now supplies the
// fallback for absent or unusable values; a nil Now uses time.Now.
type Normalizer struct {
	Now func() time.Time
}

// New returns a Normalizer reading the given clock.
func New(now func() time.Time) *Normalizer {
	return &Normalizer{Now: now}
}

// Normalize returns d as epoch milliseconds. It never fails: absent and
// unusable values become the current time.
func (n *Normalizer) Normalize(d types.DateLike) int64 {
	ms, _ := n.Coerce(d)
	return ms
}

// Coerce is Normalize with a report. ok is false when d was present but could
// not be used (an unparseable string, a negative or out-of-range epoch, or a
// time before 1970) and the current time was substituted. Absent values are
// not an error.
func (n *Normalizer) Coerce(d types.DateLike) (ms int64, ok bool) {
	if d.IsAbsent() {
		return n.now(), true
	}
	switch d.Kind {
	case types.DateEpoch:
		if d.Epoch >= 0 {
			return d.Epoch, true
		}
		return n.now(), false
	case types.DateTime:
		if ms := d.Time.UnixMilli(); ms >= 0 {
			return ms, true
		}
		return n.now(), false
	case types.DateString:
		t, err := Parse(d.Text)
		if err != nil {
			return n.now(), false
		}
		if ms := t.UnixMilli(); ms >= 0 {
			return ms, true
		}
		return n.now(), false
	default:
		return n.now(), false
	}
}

func (n *Normalizer) now() int64 {
	if n == nil || n.Now == nil {
		return time.Now().UnixMilli()
	}
	return n.Now().UnixMilli()
}

// Parse reads a textual date using the accepted layouts.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// DateString formats t as the YYYY-MM-DD calendar date in UTC, the form used
// in output file names.
func DateString(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
