// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect reads Aidoku backups back with an independent property
// list decoder and summarizes their contents.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
	"howett.net/plist"

	"github.com/pdiddy/mangabridge/internal/bplist"
	"github.com/pdiddy/mangabridge/pkg/types"
)

// ErrNotBinary is returned for property lists that are not in binary form.
var ErrNotBinary = errors.New("not a binary property list")

// Summary describes one decoded backup.
type Summary struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Size        int          `json:"size" yaml:"size"`
	Version     string       `json:"version" yaml:"version"`
	Created     time.Time    `json:"created" yaml:"created"`
	NativeDates bool         `json:"native_dates" yaml:"native_dates"`
	Objects     uint64       `json:"objects" yaml:"objects"`
	RefSize     uint8        `json:"ref_size" yaml:"ref_size"`
	Counts      types.Counts `json:"counts" yaml:"counts"`
	Sources     []string     `json:"sources" yaml:"sources"`
	Categories  []string     `json:"categories" yaml:"categories"`
	Completed   int          `json:"completed_chapters" yaml:"completed_chapters"`
	NSFW        int          `json:"nsfw_manga" yaml:"nsfw_manga"`
}

// Decode reads an encoded backup. Timestamps written as native plist dates
// are converted back to epoch milliseconds, so the result is the same
// whichever date representation was used. The second return reports whether
// native dates were found.
func Decode(data []byte) (*types.AidokuBackup, bool, error) {
	var generic any
	format, err := plist.Unmarshal(data, &generic)
	if err != nil {
		return nil, false, fmt.Errorf("decoding property list: %w", err)
	}
	if format != plist.BinaryFormat {
		return nil, false, fmt.Errorf("%w (found %s)", ErrNotBinary, plist.FormatNames[format])
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, false, fmt.Errorf("top-level object is %T, want a dictionary", generic)
	}

	native := false
	normalized := epochMillis(generic, &native)

	// The json tags on the target types carry the same keys as the plist
	// tags, so a JSON hop maps the generic tree onto the typed document.
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, false, fmt.Errorf("re-encoding document: %w", err)
	}
	var doc types.AidokuBackup
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("document does not match the Aidoku layout: %w", err)
	}
	return &doc, native, nil
}

// epochMillis replaces every time.Time in v with epoch milliseconds.
func epochMillis(v any, native *bool) any {
	switch x := v.(type) {
	case time.Time:
		*native = true
		return x.UnixMilli()
	case map[string]any:
		for k, e := range x {
			x[k] = epochMillis(e, native)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = epochMillis(e, native)
		}
		return x
	default:
		return v
	}
}

// Summarize decodes data and builds its Summary.
func Summarize(name string, data []byte) (*Summary, error) {
	doc, native, err := Decode(data)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Name:        name,
		Size:        len(data),
		Version:     doc.Version,
		Created:     time.UnixMilli(doc.Date).UTC(),
		NativeDates: native,
		Counts:      doc.Counts(),
		Sources:     sorted(doc.Sources),
		Categories:  sorted(doc.Categories),
	}
	if tr, ok := bplist.ReadTrailer(data); ok {
		s.Objects = tr.NumObjects
		s.RefSize = tr.ObjectRefSize
	}
	for _, h := range doc.History {
		if h.Completed {
			s.Completed++
		}
	}
	for _, m := range doc.Manga {
		if m.NSFW != 0 {
			s.NSFW++
		}
	}
	return s, nil
}

func sorted(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}

// Write renders s to w as text, yaml, or json.
func Write(w io.Writer, s *Summary, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return writeText(w, s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return fmt.Errorf("unknown format %q (want text, yaml, or json)", format)
}

func writeText(w io.Writer, s *Summary) error {
	var b strings.Builder
	if s.Name != "" {
		fmt.Fprintf(&b, "%s\n", s.Name)
	}
	dates := "epoch milliseconds"
	if s.NativeDates {
		dates = "native"
	}
	fmt.Fprintf(&b, "  Version: %s\n", s.Version)
	fmt.Fprintf(&b, "  Created: %s\n", s.Created.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Size: %d bytes, %d objects (ref size %d)\n", s.Size, s.Objects, s.RefSize)
	fmt.Fprintf(&b, "  Dates: %s\n", dates)
	fmt.Fprintf(&b, "  Library entries: %d\n", s.Counts.Library)
	fmt.Fprintf(&b, "  Manga entries: %d (%d nsfw)\n", s.Counts.Manga, s.NSFW)
	fmt.Fprintf(&b, "  Chapters: %d\n", s.Counts.Chapters)
	fmt.Fprintf(&b, "  History entries: %d (%d completed)\n", s.Counts.History, s.Completed)
	fmt.Fprintf(&b, "  Sources: %s\n", list(s.Sources))
	fmt.Fprintf(&b, "  Categories: %s\n", list(s.Categories))
	_, err := io.WriteString(w, b.String())
	return err
}

func list(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
