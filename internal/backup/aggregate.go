// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backup

import "github.com/pdiddy/mangabridge/pkg/types"

// Sets holds the deduplicated values collected across entities. Order is the
// order of first appearance and carries no meaning.
type Sets struct {
	Sources    []string
	Categories []string
}

// Aggregate collects the distinct source ids of manga and the distinct
// category names of library entries. Empty source ids are ignored.
func Aggregate(library []types.AidokuLibrary, manga []types.AidokuManga) Sets {
	sources := newOrderedSet(len(manga))
	for _, m := range manga {
		if m.SourceID != "" {
			sources.add(m.SourceID)
		}
	}

	categories := newOrderedSet(0)
	for _, l := range library {
		for _, c := range l.Categories {
			categories.add(c)
		}
	}

	return Sets{Sources: sources.items, Categories: categories.items}
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		seen:  make(map[string]struct{}, capacity),
		items: make([]string, 0, capacity),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
