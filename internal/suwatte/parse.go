// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suwatte reads Suwatte backup documents and classifies their shape.
package suwatte

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/mangabridge/pkg/types"
)

// Shape selects which optional structures a backup carries.
type Shape int

const (
	// ShapeLegacy backups join library entries to storedContents by id and
	// store collection names directly on library entries.
	ShapeLegacy Shape = iota
	// ShapeRich backups also carry contentLinks and/or a collections list
	// that library entries reference by id.
	ShapeRich
)

func (s Shape) String() string {
	if s == ShapeRich {
		return "rich"
	}
	return "legacy"
}

// ParseError reports input that is not a well-formed backup document.
type ParseError struct {
	// Offset is the byte offset of a syntax error, or -1 when unknown.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("invalid backup format at byte %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("invalid backup format: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes raw JSON into a SuwatteBackup. The top level must be an
// object; any other well-formed JSON value is rejected too. Structural
// requirements (non-empty library and contents) are not checked here.
func Parse(raw []byte) (*types.SuwatteBackup, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Offset: -1, Err: errors.New("empty input")}
	}
	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, wrapDecodeError(json.Unmarshal(trimmed, new(any)))
		}
		return nil, &ParseError{Offset: -1, Err: errors.New("top-level value is not an object")}
	}

	var doc types.SuwatteBackup
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, wrapDecodeError(err)
	}
	return &doc, nil
}

func wrapDecodeError(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Offset: syntaxErr.Offset, Err: err}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ParseError{Offset: typeErr.Offset, Err: err}
	}
	return &ParseError{Offset: -1, Err: err}
}

// DetectShape returns ShapeRich when doc carries content links or a
// collections list, ShapeLegacy otherwise.
func DetectShape(doc *types.SuwatteBackup) Shape {
	if len(doc.ContentLinks) > 0 || len(doc.Collections) > 0 {
		return ShapeRich
	}
	return ShapeLegacy
}

// Summary appends the parse summary lines to log.
func Summary(doc *types.SuwatteBackup, log *types.Log) {
	log.Infof("Successfully parsed Suwatte backup (%s shape)", DetectShape(doc))
	if doc.AppVersion != "" {
		log.Infof("  App version: %s", doc.AppVersion)
	}
	log.Infof("  Library entries: %d", len(doc.Library))
	log.Infof("  Manga entries: %d", len(doc.StoredContents))
	log.Infof("  Chapters: %d", len(doc.Chapters))
	log.Infof("  Progress markers: %d", len(doc.ProgressMarkers))
	if len(doc.ContentLinks) > 0 {
		log.Infof("  Content links: %d", len(doc.ContentLinks))
	}
	if len(doc.Collections) > 0 {
		log.Infof("  Collections: %d", len(doc.Collections))
	}
}
