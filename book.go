package shelf

import (
	"context"
	"time"
)

// Book represents a book discovered on a source. The detail URL is the
// book's natural key.
type Book struct {
	ID         string `json:"id"`
	URL        string `json:"bookUrl"`
	TocURL     string `json:"tocUrl"`
	Origin     string `json:"origin"`
	OriginName string `json:"originName"`

	Name          string `json:"name"`
	Author        string `json:"author"`
	Intro         string `json:"intro"`
	CoverURL      string `json:"coverUrl"`
	Kind          string `json:"kind"`
	LatestChapter string `json:"latestChapterTitle"`
	WordCount     string `json:"wordCount"`

	// Reading position.
	ChapterIndex int    `json:"durChapterIndex"`
	ChapterPos   int    `json:"durChapterPos"`
	ChapterTitle string `json:"durChapterTitle"`

	TotalChapters int `json:"totalChapterNum"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the book contains invalid fields.
func (b *Book) Validate() error {
	if b.Name == "" {
		return Errorf(EINVALID, "book name required")
	}
	if b.URL == "" {
		return Errorf(EINVALID, "book URL required")
	}
	return nil
}

// UnreadChapters returns the number of chapters after the current one.
func (b *Book) UnreadChapters() int {
	total := b.TotalChapters
	if total <= 0 {
		total = 1
	}
	return max(total-b.ChapterIndex-1, 0)
}

// BookService represents a service for managing books.
type BookService interface {
	// CreateBook creates a new book.
	// Returns ECONFLICT if a book with the same URL exists.
	CreateBook(ctx context.Context, book *Book) error

	// FindBookByID retrieves a book by ID.
	// Returns ENOTFOUND if book does not exist.
	FindBookByID(ctx context.Context, id string) (*Book, error)

	// FindBookByURL retrieves a book by its detail URL.
	// Returns ENOTFOUND if book does not exist.
	FindBookByURL(ctx context.Context, url string) (*Book, error)

	// FindBooks retrieves books matching the filter, most recently
	// updated first.
	FindBooks(ctx context.Context, filter BookFilter) ([]*Book, error)

	// UpdateBook updates an existing book.
	// Returns ENOTFOUND if book does not exist.
	UpdateBook(ctx context.Context, id string, upd BookUpdate) (*Book, error)

	// DeleteBook permanently removes a book and all of its chapters.
	// Returns ENOTFOUND if book does not exist.
	DeleteBook(ctx context.Context, id string) error
}

// BookFilter represents a filter for FindBooks.
type BookFilter struct {
	ID     *string `json:"id"`
	URL    *string `json:"url"`
	Origin *string `json:"origin"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// BookUpdate represents fields that can be updated on a book.
type BookUpdate struct {
	TocURL        *string `json:"tocUrl"`
	LatestChapter *string `json:"latestChapterTitle"`
	ChapterIndex  *int    `json:"durChapterIndex"`
	ChapterPos    *int    `json:"durChapterPos"`
	ChapterTitle  *string `json:"durChapterTitle"`
	TotalChapters *int    `json:"totalChapterNum"`
}
