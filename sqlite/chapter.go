package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fwojciec/shelf"
)

// Compile-time interface verification.
var _ shelf.ChapterService = (*ChapterService)(nil)

// ChapterService implements shelf.ChapterService using SQLite.
type ChapterService struct {
	db *DB
}

// NewChapterService creates a new ChapterService.
func NewChapterService(db *DB) *ChapterService {
	return &ChapterService{db: db}
}

// ReplaceChapters atomically replaces every chapter of a book. Cached
// content is carried over to a new chapter with the same URL.
func (s *ChapterService) ReplaceChapters(ctx context.Context, bookID string, chapters []*shelf.Chapter) error {
	for i, ch := range chapters {
		ch.BookID = bookID
		if err := ch.Validate(); err != nil {
			return err
		}
		if ch.Index != i {
			return shelf.Errorf(shelf.EINVALID, "chapter index %d at position %d", ch.Index, i)
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM books WHERE id = ?", bookID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return shelf.Errorf(shelf.ENOTFOUND, "book not found")
	}
	if err != nil {
		return err
	}

	cached, err := cachedContent(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE book_id = ?", bookID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (book_id, chapter_index, title, url, content, content_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ch := range chapters {
		var content sql.NullString
		if c, ok := cached[ch.URL]; ok && ch.URL != "" {
			content = sql.NullString{String: c.content, Valid: true}
			ch.Content = c.content
			ch.ContentHash = c.hash
		}
		if _, err := stmt.ExecContext(ctx, bookID, ch.Index, ch.Title, ch.URL, content, ch.ContentHash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type cachedChapter struct {
	content string
	hash    string
}

func cachedContent(ctx context.Context, tx *sql.Tx, bookID string) (map[string]cachedChapter, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT url, content, content_hash FROM chapters
		WHERE book_id = ? AND content IS NOT NULL AND content <> ''
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cached := make(map[string]cachedChapter)
	for rows.Next() {
		var url string
		var c cachedChapter
		if err := rows.Scan(&url, &c.content, &c.hash); err != nil {
			return nil, err
		}
		cached[url] = c
	}
	return cached, rows.Err()
}

// FindChapter retrieves a chapter, including its content, by book ID and index.
func (s *ChapterService) FindChapter(ctx context.Context, bookID string, index int) (*shelf.Chapter, error) {
	var ch shelf.Chapter
	var content sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT book_id, chapter_index, title, url, content, content_hash
		FROM chapters
		WHERE book_id = ? AND chapter_index = ?
	`, bookID, index).Scan(&ch.BookID, &ch.Index, &ch.Title, &ch.URL, &content, &ch.ContentHash)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, shelf.Errorf(shelf.ENOTFOUND, "chapter not found")
	}
	if err != nil {
		return nil, err
	}

	ch.Content = content.String
	return &ch, nil
}

// FindChapters retrieves a book's chapters in index order without content.
// ContentHash is set for chapters whose content is cached.
func (s *ChapterService) FindChapters(ctx context.Context, filter shelf.ChapterFilter) ([]*shelf.Chapter, error) {
	var query strings.Builder
	args := []any{filter.BookID}

	query.WriteString(`
		SELECT book_id, chapter_index, title, url, content_hash
		FROM chapters
		WHERE book_id = ?
		ORDER BY chapter_index ASC`)
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*shelf.Chapter
	for rows.Next() {
		var ch shelf.Chapter
		if err := rows.Scan(&ch.BookID, &ch.Index, &ch.Title, &ch.URL, &ch.ContentHash); err != nil {
			return nil, err
		}
		chapters = append(chapters, &ch)
	}

	return chapters, rows.Err()
}

// SetChapterContent stores the content of a chapter.
func (s *ChapterService) SetChapterContent(ctx context.Context, bookID string, index int, content string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chapters SET content = ?, content_hash = ?
		WHERE book_id = ? AND chapter_index = ?
	`, content, hashContent(content), bookID, index)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return shelf.Errorf(shelf.ENOTFOUND, "chapter not found")
	}

	return nil
}
