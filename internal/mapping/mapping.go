// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapping turns Suwatte entities into their Aidoku counterparts.
//
// The per-entity functions are pure. Map walks a whole document, joins
// library entries to content records, and reports problems as diagnostics
// instead of failing.
package mapping

import (
	"strings"

	"github.com/pdiddy/mangabridge/internal/dates"
	"github.com/pdiddy/mangabridge/internal/suwatte"
	"github.com/pdiddy/mangabridge/pkg/types"
)

const (
	// defaultLanguage is used for chapters without a language code.
	defaultLanguage = "en"
	// viewerDefault lets Aidoku pick the reader mode.
	viewerDefault   = 0
	authorSeparator = ", "
)

// Entities holds the mapped target records of one document.
type Entities struct {
	Library  []types.AidokuLibrary
	Manga    []types.AidokuManga
	Chapters []types.AidokuChapter
	History  []types.AidokuHistory
}

// Mapper converts entities for one document shape. A Mapper holds no state
// between calls; build one per conversion.
type Mapper struct {
	shape suwatte.Shape
	dates *dates.Normalizer
}

// New returns a Mapper for shape that normalizes dates with n.
func New(shape suwatte.Shape, n *dates.Normalizer) *Mapper {
	return &Mapper{shape: shape, dates: n}
}

// Shape returns the document shape the mapper was built for.
func (m *Mapper) Shape() suwatte.Shape { return m.shape }

// Library maps a library entry joined with its content record. categories are
// the already-resolved category names.
func (m *Mapper) Library(entry types.LibraryEntry, content types.StoredContent, categories []string, log *types.Log) types.AidokuLibrary {
	if categories == nil {
		categories = []string{}
	}
	return types.AidokuLibrary{
		MangaID:     entry.ID,
		LastUpdated: m.date(entry.LastUpdated, "lastUpdated of library entry "+entry.ID, log),
		Categories:  categories,
		DateAdded:   m.date(entry.DateAdded, "dateAdded of library entry "+entry.ID, log),
		SourceID:    content.SourceID,
		LastOpened:  m.date(entry.LastOpened, "lastOpened of library entry "+entry.ID, log),
	}
}

// Manga maps a content record. lastUpdate comes from the library entry that
// referenced it. Source tags are intentionally dropped.
func Manga(content types.StoredContent, lastUpdate int64) types.AidokuManga {
	nsfw := 0
	if content.IsNSFW {
		nsfw = 1
	}
	return types.AidokuManga{
		ID:         content.ID,
		LastUpdate: lastUpdate,
		Author:     JoinCreators(content.Creators),
		URL:        "",
		NSFW:       nsfw,
		Tags:       []string{},
		Title:      content.Title,
		SourceID:   content.SourceID,
		Desc:       content.Summary,
		Cover:      content.Cover,
		Viewer:     viewerDefault,
		Status:     content.Status,
	}
}

// Chapter maps a stored chapter.
func (m *Mapper) Chapter(ch types.StoredChapter, log *types.Log) types.AidokuChapter {
	id := ch.ID
	if id == "" {
		id = ch.ChapterID
	}
	lang := ch.Language
	if lang == "" {
		lang = defaultLanguage
	}
	return types.AidokuChapter{
		Volume:       ch.Volume,
		MangaID:      ch.ContentID,
		Lang:         lang,
		ID:           id,
		Scanlator:    "",
		Title:        ch.Title,
		SourceID:     ch.SourceID,
		DateUploaded: m.date(ch.Date, "date of chapter "+id, log),
		Chapter:      ch.Number,
		SourceOrder:  ch.Index,
	}
}

// History maps a progress marker that has a chapter reference. sourceID may
// be empty when the source is unknown.
func (m *Mapper) History(marker types.ProgressMarker, sourceID string, log *types.Log) types.AidokuHistory {
	ref := marker.Chapter
	return types.AidokuHistory{
		Progress:  marker.LastPageRead,
		MangaID:   ref.ContentID,
		ChapterID: ref.ChapterID,
		Completed: marker.LastPageRead == marker.TotalPageCount,
		SourceID:  sourceID,
		DateRead:  m.date(marker.DateRead, "dateRead of chapter "+ref.ChapterID, log),
		Total:     marker.TotalPageCount,
	}
}

// JoinCreators joins creator names with ", ". An empty list yields "".
func JoinCreators(creators []string) string {
	return strings.Join(creators, authorSeparator)
}

func (m *Mapper) date(d types.DateLike, what string, log *types.Log) int64 {
	ms, ok := m.dates.Coerce(d)
	if !ok && log != nil {
		log.Warnf(types.CodeInvalidDate, "unusable %s (%s), using current time", what, d)
	}
	return ms
}
