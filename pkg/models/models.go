package models

import (
	"fmt"
	"time"
)

// Chapter group constants
const (
	GroupSerial = "serial"
	GroupExtra  = "extra"
)

// Manga represents a manga in the catalog
type Manga struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`
	Chapters Chapters `json:"chapters"`
}

// Chapters holds the two canonical chapter orderings of a manga.
// Both lists are ordered newest first.
type Chapters struct {
	Serial []Chapter `json:"serial"`
	Extra  []Chapter `json:"extra"`
}

// Chapter represents a chapter entry in a canonical ordering
type Chapter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Group returns the ordering that contains chapterID and its name
func (c Chapters) Group(chapterID string) ([]Chapter, string) {
	if IndexOf(c.Extra, chapterID) != -1 {
		return c.Extra, GroupExtra
	}
	return c.Serial, GroupSerial
}

// IndexOf returns the position of chapterID in chapters, or -1
func IndexOf(chapters []Chapter, chapterID string) int {
	for i, ch := range chapters {
		if ch.ID == chapterID {
			return i
		}
	}
	return -1
}

// ChapterByID looks a chapter up in both orderings
func (m *Manga) ChapterByID(id string) (Chapter, bool) {
	for _, list := range [][]Chapter{m.Chapters.Serial, m.Chapters.Extra} {
		if i := IndexOf(list, id); i != -1 {
			return list[i], true
		}
	}
	return Chapter{}, false
}

// ChapterRef identifies a chapter of a manga for history records
type ChapterRef struct {
	MangaID   string `json:"manga_id"`
	ChapterID string `json:"chapter_id"`
}

// PageID identifies a single page within a reading session
type PageID struct {
	ChapterID string
	Page      int
}

// String returns the "<chapter>_<page>" form used as a page key
func (p PageID) String() string {
	return fmt.Sprintf("%s_%d", p.ChapterID, p.Page)
}

// ReadingPosition represents the last read page of a manga
type ReadingPosition struct {
	MangaID   string    `json:"manga_id"`
	ChapterID string    `json:"chapter_id"`
	Page      int       `json:"page"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PagesResponse represents the page URL list of a chapter
type PagesResponse struct {
	ChapterID string   `json:"chapter_id"`
	URLs      []string `json:"urls"`
}

// PositionResponse represents reading position response
type PositionResponse struct {
	Position *ReadingPosition `json:"position"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}
