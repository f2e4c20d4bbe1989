package shelf

import (
	"context"
	"fmt"
)

// Chapter represents one entry of a book's table of contents.
// (BookID, Index) is unique and indices run 0..N-1 within a book.
type Chapter struct {
	BookID string `json:"bookId"`
	Index  int    `json:"chapterIndex"`
	Title  string `json:"title"`
	URL    string `json:"url"`

	// Content is empty until the chapter is first read.
	Content     string `json:"content,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
}

// Validate returns an error if the chapter contains invalid fields.
func (c *Chapter) Validate() error {
	if c.BookID == "" {
		return Errorf(EINVALID, "chapter book ID required")
	}
	if c.Index < 0 {
		return Errorf(EINVALID, "chapter index must not be negative")
	}
	return nil
}

// DisplayTitle returns the chapter title or a numbered placeholder.
func (c *Chapter) DisplayTitle() string {
	if c.Title == "" {
		return fmt.Sprintf("Chapter %d", c.Index+1)
	}
	return c.Title
}

// ChapterService represents a service for managing chapters.
type ChapterService interface {
	// ReplaceChapters atomically replaces every chapter of a book.
	ReplaceChapters(ctx context.Context, bookID string, chapters []*Chapter) error

	// FindChapter retrieves a chapter by book ID and index.
	// Returns ENOTFOUND if chapter does not exist.
	FindChapter(ctx context.Context, bookID string, index int) (*Chapter, error)

	// FindChapters retrieves a book's chapters in index order.
	// Content is not loaded.
	FindChapters(ctx context.Context, filter ChapterFilter) ([]*Chapter, error)

	// SetChapterContent stores the content of a chapter.
	// Returns ENOTFOUND if chapter does not exist.
	SetChapterContent(ctx context.Context, bookID string, index int, content string) error
}

// ChapterFilter represents a filter for FindChapters.
type ChapterFilter struct {
	BookID string `json:"bookId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
