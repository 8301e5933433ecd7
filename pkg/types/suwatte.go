// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SuwatteBackup is the source document: a Suwatte backup as exported to JSON.
// Every collection is optional at the decoding level; structural requirements
// are enforced after mapping.
type SuwatteBackup struct {
	// Library lists the entries the user has saved.
	Library []LibraryEntry `json:"library"`

	// StoredContents holds the content records library entries point at.
	StoredContents []StoredContent `json:"storedContents"`

	// Chapters lists chapter records for stored contents.
	Chapters []StoredChapter `json:"chapters"`

	// ProgressMarkers records reading progress per chapter.
	ProgressMarkers []ProgressMarker `json:"progressMarkers"`

	// ContentLinks maps library entries to content records under another id.
	// Only present in the rich export shape.
	ContentLinks []ContentLink `json:"contentLinks,omitempty"`

	// Collections names the user's library collections.
	// Only present in the rich export shape.
	Collections []LibraryCollection `json:"collections,omitempty"`

	// Date is when the backup was taken.
	Date DateLike `json:"date"`

	// AppVersion is the Suwatte version that produced the backup.
	AppVersion string `json:"appVersion,omitempty"`
}

// LibraryEntry is one saved title in the Suwatte library.
type LibraryEntry struct {
	// ID is the content identifier; it matches StoredContent.ID.
	ID string `json:"id"`

	LastUpdated DateLike `json:"lastUpdated"`
	DateAdded   DateLike `json:"dateAdded"`
	LastOpened  DateLike `json:"lastOpened"`

	// Collections holds collection names, or collection ids when the backup
	// also carries a Collections list.
	Collections []string `json:"collections"`
}

// StoredContent is the metadata record for one title.
type StoredContent struct {
	ID       string   `json:"id"`
	SourceID string   `json:"sourceId"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Cover    string   `json:"cover"`
	Creators []string `json:"creators"`
	IsNSFW   bool     `json:"isNSFW"`

	// Status is Suwatte's publication status code; Aidoku uses the same codes.
	Status int `json:"status"`
}

// StoredChapter is one chapter record.
type StoredChapter struct {
	ID        string   `json:"id"`
	ChapterID string   `json:"chapterId"`
	ContentID string   `json:"contentId"`
	SourceID  string   `json:"sourceId"`
	Volume    *float64 `json:"volume,omitempty"`
	Number    float64  `json:"number"`
	Language  string   `json:"language,omitempty"`
	Title     string   `json:"title,omitempty"`
	Date      DateLike `json:"date"`
	Index     int      `json:"index,omitempty"`
}

// ChapterReference identifies the chapter a progress marker belongs to.
type ChapterReference struct {
	ID        string `json:"id,omitempty"`
	SourceID  string `json:"sourceId,omitempty"`
	ContentID string `json:"contentId"`
	ChapterID string `json:"chapterId"`
}

// ProgressMarker records how far a chapter was read.
type ProgressMarker struct {
	Chapter        *ChapterReference `json:"chapter"`
	LastPageRead   int               `json:"lastPageRead"`
	TotalPageCount int               `json:"totalPageCount"`
	DateRead       DateLike          `json:"dateRead"`
}

// ContentLink points a library entry id at the content record that holds its
// metadata.
type ContentLink struct {
	ID        string `json:"id"`
	EntryID   string `json:"entryId"`
	ContentID string `json:"contentId"`
}

// LibraryCollection is a named library collection.
type LibraryCollection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}
