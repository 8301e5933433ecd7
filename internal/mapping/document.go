// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"github.com/pdiddy/mangabridge/internal/suwatte"
	"github.com/pdiddy/mangabridge/pkg/types"
)

// Map converts every entity of doc. Library entries without a content record
// and progress markers without a chapter reference are skipped with a
// missing-reference warning; a second library entry for an already mapped
// title is skipped with a duplicate-entry warning.
func (m *Mapper) Map(doc *types.SuwatteBackup) (Entities, types.Log) {
	var (
		out Entities
		log types.Log
	)

	contents := make(map[string]types.StoredContent, len(doc.StoredContents))
	for _, c := range doc.StoredContents {
		if _, dup := contents[c.ID]; dup {
			continue
		}
		contents[c.ID] = c
	}

	var links map[string]string
	var collectionNames map[string]string
	if m.shape == suwatte.ShapeRich {
		links = make(map[string]string, len(doc.ContentLinks))
		for _, l := range doc.ContentLinks {
			if _, dup := links[l.EntryID]; !dup {
				links[l.EntryID] = l.ContentID
			}
		}
		collectionNames = make(map[string]string, len(doc.Collections))
		for _, c := range doc.Collections {
			collectionNames[c.ID] = c.Name
		}
	}

	seen := make(map[string]bool, len(doc.Library))
	for _, entry := range doc.Library {
		content, ok := contents[entry.ID]
		if !ok && links != nil {
			if linked, has := links[entry.ID]; has {
				content, ok = contents[linked]
			}
		}
		if !ok {
			log.Warnf(types.CodeMissingReference,
				"No content found for library entry %s, skipping", entry.ID)
			continue
		}
		if seen[content.ID] {
			log.Warnf(types.CodeDuplicateEntry,
				"Duplicate library entry for %s, skipping", content.ID)
			continue
		}
		seen[content.ID] = true

		categories := m.categories(entry, collectionNames, &log)
		lib := m.Library(entry, content, categories, &log)
		lib.MangaID = content.ID
		out.Library = append(out.Library, lib)
		out.Manga = append(out.Manga, Manga(content, lib.LastUpdated))
	}

	for _, ch := range doc.Chapters {
		out.Chapters = append(out.Chapters, m.Chapter(ch, &log))
	}

	for i, marker := range doc.ProgressMarkers {
		if marker.Chapter == nil {
			log.Warnf(types.CodeMissingReference,
				"Progress marker %d has no chapter reference, skipping", i)
			continue
		}
		sourceID := marker.Chapter.SourceID
		if c, ok := contents[marker.Chapter.ContentID]; ok && c.SourceID != "" {
			sourceID = c.SourceID
		}
		out.History = append(out.History, m.History(marker, sourceID, &log))
	}

	return out, log
}

// categories resolves the collection references of entry to names. Legacy
// backups already store names. Rich backups with a collections list store
// ids; unknown ids are kept verbatim.
func (m *Mapper) categories(entry types.LibraryEntry, names map[string]string, log *types.Log) []string {
	out := make([]string, 0, len(entry.Collections))
	if len(names) == 0 {
		return append(out, entry.Collections...)
	}
	for _, ref := range entry.Collections {
		if name, ok := names[ref]; ok {
			out = append(out, name)
			continue
		}
		log.Warnf(types.CodeUnknownCollection,
			"Library entry %s references unknown collection %q", entry.ID, ref)
		out = append(out, ref)
	}
	return out
}
