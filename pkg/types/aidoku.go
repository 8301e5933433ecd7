// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AidokuFormatVersion is the backup format version written to every document.
const AidokuFormatVersion = "1.0.0"

// AidokuBackup is the target document, encoded as a binary property list.
//
// Timestamp fields are epoch milliseconds. The epochms tag option lets the
// encoder write them as native plist dates when asked to.
type AidokuBackup struct {
	Library    []AidokuLibrary `plist:"library" json:"library" yaml:"library"`
	History    []AidokuHistory `plist:"history" json:"history" yaml:"history"`
	Manga      []AidokuManga   `plist:"manga" json:"manga" yaml:"manga"`
	Chapters   []AidokuChapter `plist:"chapters" json:"chapters" yaml:"chapters"`
	Sources    []string        `plist:"sources" json:"sources" yaml:"sources"`
	Categories []string        `plist:"categories" json:"categories" yaml:"categories"`
	Date       int64           `plist:"date,epochms" json:"date" yaml:"date"`
	Version    string          `plist:"version" json:"version" yaml:"version"`
}

// AidokuLibrary is a library membership record.
type AidokuLibrary struct {
	MangaID     string   `plist:"mangaId" json:"mangaId" yaml:"manga_id"`
	LastUpdated int64    `plist:"lastUpdated,epochms" json:"lastUpdated" yaml:"last_updated"`
	Categories  []string `plist:"categories" json:"categories" yaml:"categories"`
	DateAdded   int64    `plist:"dateAdded,epochms" json:"dateAdded" yaml:"date_added"`
	SourceID    string   `plist:"sourceId" json:"sourceId" yaml:"source_id"`
	LastOpened  int64    `plist:"lastOpened,epochms" json:"lastOpened" yaml:"last_opened"`
}

// AidokuManga is a manga metadata record.
type AidokuManga struct {
	ID         string   `plist:"id" json:"id" yaml:"id"`
	LastUpdate int64    `plist:"lastUpdate,epochms" json:"lastUpdate" yaml:"last_update"`
	Author     string   `plist:"author" json:"author" yaml:"author"`
	URL        string   `plist:"url" json:"url" yaml:"url"`
	NSFW       int      `plist:"nsfw" json:"nsfw" yaml:"nsfw"`
	Tags       []string `plist:"tags" json:"tags" yaml:"tags"`
	Title      string   `plist:"title" json:"title" yaml:"title"`
	SourceID   string   `plist:"sourceId" json:"sourceId" yaml:"source_id"`
	Desc       string   `plist:"desc" json:"desc" yaml:"desc"`
	Cover      string   `plist:"cover" json:"cover" yaml:"cover"`
	Viewer     int      `plist:"viewer" json:"viewer" yaml:"viewer"`
	Status     int      `plist:"status" json:"status" yaml:"status"`
}

// AidokuChapter is a chapter record.
type AidokuChapter struct {
	Volume       *float64 `plist:"volume,omitempty" json:"volume,omitempty" yaml:"volume,omitempty"`
	MangaID      string   `plist:"mangaId" json:"mangaId" yaml:"manga_id"`
	Lang         string   `plist:"lang" json:"lang" yaml:"lang"`
	ID           string   `plist:"id" json:"id" yaml:"id"`
	Scanlator    string   `plist:"scanlator" json:"scanlator" yaml:"scanlator"`
	Title        string   `plist:"title" json:"title" yaml:"title"`
	SourceID     string   `plist:"sourceId" json:"sourceId" yaml:"source_id"`
	DateUploaded int64    `plist:"dateUploaded,epochms" json:"dateUploaded" yaml:"date_uploaded"`
	Chapter      float64  `plist:"chapter" json:"chapter" yaml:"chapter"`
	SourceOrder  int      `plist:"sourceOrder" json:"sourceOrder" yaml:"source_order"`
}

// AidokuHistory is a reading-history record.
type AidokuHistory struct {
	Progress  int    `plist:"progress" json:"progress" yaml:"progress"`
	MangaID   string `plist:"mangaId" json:"mangaId" yaml:"manga_id"`
	ChapterID string `plist:"chapterId" json:"chapterId" yaml:"chapter_id"`
	Completed bool   `plist:"completed" json:"completed" yaml:"completed"`
	SourceID  string `plist:"sourceId" json:"sourceId" yaml:"source_id"`
	DateRead  int64  `plist:"dateRead,epochms" json:"dateRead" yaml:"date_read"`
	Total     int    `plist:"total" json:"total" yaml:"total"`
}

// Counts summarizes the size of a target document.
type Counts struct {
	Library    int `json:"library" yaml:"library"`
	Manga      int `json:"manga" yaml:"manga"`
	Chapters   int `json:"chapters" yaml:"chapters"`
	History    int `json:"history" yaml:"history"`
	Sources    int `json:"sources" yaml:"sources"`
	Categories int `json:"categories" yaml:"categories"`
}

// Counts returns the number of records in each collection of b.
func (b *AidokuBackup) Counts() Counts {
	if b == nil {
		return Counts{}
	}
	return Counts{
		Library:    len(b.Library),
		Manga:      len(b.Manga),
		Chapters:   len(b.Chapters),
		History:    len(b.History),
		Sources:    len(b.Sources),
		Categories: len(b.Categories),
	}
}
