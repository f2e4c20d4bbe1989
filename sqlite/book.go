package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/shelf"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ shelf.BookService = (*BookService)(nil)

const bookColumns = `id, url, toc_url, origin, origin_name, name, author, intro, cover_url,
	kind, latest_chapter, word_count, chapter_index, chapter_pos, chapter_title,
	total_chapters, created_at, updated_at`

// BookService implements shelf.BookService using SQLite.
type BookService struct {
	db *DB
}

// NewBookService creates a new BookService.
func NewBookService(db *DB) *BookService {
	return &BookService{db: db}
}

// CreateBook creates a new book.
func (s *BookService) CreateBook(ctx context.Context, book *shelf.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	book.ID = uuid.New().String()
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, book.ID, book.URL, book.TocURL, book.Origin, book.OriginName, book.Name, book.Author,
		book.Intro, book.CoverURL, book.Kind, book.LatestChapter, book.WordCount,
		book.ChapterIndex, book.ChapterPos, book.ChapterTitle, book.TotalChapters,
		formatTime(book.CreatedAt), formatTime(book.UpdatedAt))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return shelf.Errorf(shelf.ECONFLICT, "book %q already exists", book.URL)
	}
	return nil
}

// FindBookByID retrieves a book by ID.
func (s *BookService) FindBookByID(ctx context.Context, id string) (*shelf.Book, error) {
	return s.findOne(ctx, "id", id)
}

// FindBookByURL retrieves a book by its detail URL.
func (s *BookService) FindBookByURL(ctx context.Context, url string) (*shelf.Book, error) {
	return s.findOne(ctx, "url", url)
}

func (s *BookService) findOne(ctx context.Context, column, value string) (*shelf.Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE "+column+" = ?", value)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shelf.Errorf(shelf.ENOTFOUND, "book not found")
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// FindBooks retrieves books matching the filter, most recently updated first.
func (s *BookService) FindBooks(ctx context.Context, filter shelf.BookFilter) ([]*shelf.Book, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + bookColumns + " FROM books WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Origin != nil {
		query.WriteString(" AND origin = ?")
		args = append(args, *filter.Origin)
	}

	query.WriteString(" ORDER BY updated_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*shelf.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

// UpdateBook updates an existing book.
func (s *BookService) UpdateBook(ctx context.Context, id string, upd shelf.BookUpdate) (*shelf.Book, error) {
	book, err := s.FindBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.TocURL != nil {
		book.TocURL = *upd.TocURL
	}
	if upd.LatestChapter != nil {
		book.LatestChapter = *upd.LatestChapter
	}
	if upd.ChapterIndex != nil {
		book.ChapterIndex = *upd.ChapterIndex
	}
	if upd.ChapterPos != nil {
		book.ChapterPos = *upd.ChapterPos
	}
	if upd.ChapterTitle != nil {
		book.ChapterTitle = *upd.ChapterTitle
	}
	if upd.TotalChapters != nil {
		book.TotalChapters = *upd.TotalChapters
	}

	if book.ChapterIndex < 0 || book.ChapterPos < 0 {
		return nil, shelf.Errorf(shelf.EINVALID, "reading position must not be negative")
	}

	book.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE books
		SET toc_url = ?, latest_chapter = ?, chapter_index = ?, chapter_pos = ?,
			chapter_title = ?, total_chapters = ?, updated_at = ?
		WHERE id = ?
	`, book.TocURL, book.LatestChapter, book.ChapterIndex, book.ChapterPos,
		book.ChapterTitle, book.TotalChapters, formatTime(book.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return book, nil
}

// DeleteBook permanently removes a book. Its chapters are removed by the
// foreign key cascade.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return shelf.Errorf(shelf.ENOTFOUND, "book not found")
	}

	return nil
}

func scanBook(row scanner) (*shelf.Book, error) {
	var book shelf.Book
	var createdAt, updatedAt string

	if err := row.Scan(&book.ID, &book.URL, &book.TocURL, &book.Origin, &book.OriginName,
		&book.Name, &book.Author, &book.Intro, &book.CoverURL, &book.Kind,
		&book.LatestChapter, &book.WordCount, &book.ChapterIndex, &book.ChapterPos,
		&book.ChapterTitle, &book.TotalChapters, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if book.CreatedAt, book.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &book, nil
}
