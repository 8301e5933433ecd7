// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backup

import (
	"time"

	"github.com/pdiddy/mangabridge/internal/mapping"
	"github.com/pdiddy/mangabridge/pkg/types"
)

// Assemble composes the target document. It does no validation. Nil lists
// become empty lists so every array is present in the encoded document.
func Assemble(ents mapping.Entities, sets Sets, now time.Time) *types.AidokuBackup {
	return &types.AidokuBackup{
		Library:    orEmpty(ents.Library),
		History:    orEmpty(ents.History),
		Manga:      orEmpty(ents.Manga),
		Chapters:   orEmpty(ents.Chapters),
		Sources:    orEmpty(sets.Sources),
		Categories: orEmpty(sets.Categories),
		Date:       now.UnixMilli(),
		Version:    types.AidokuFormatVersion,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
