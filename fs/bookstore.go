// Package fs exports books as Markdown files.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/shelf"
)

// Ensure BookStore implements shelf.ChapterStore at compile time.
var _ shelf.ChapterStore = (*BookStore)(nil)

var unsafeRuns = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug turns a title into a lower-case file name component. Letters of any
// script are kept.
func Slug(title string) string {
	s := strings.Trim(unsafeRuns.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// ChapterPath returns the file name for a chapter, prefixed with its
// 1-based number so files sort in reading order.
// Example: index 0 "The Gate" → 0001-the-gate.md
func ChapterPath(ch *shelf.Chapter) string {
	return fmt.Sprintf("%04d-%s.md", ch.Index+1, Slug(ch.DisplayTitle()))
}

// FormatChapter formats a chapter with YAML frontmatter.
func FormatChapter(book *shelf.Book, ch *shelf.Chapter, content string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("book: ")
	b.WriteString(book.Name)
	if book.Author != "" {
		b.WriteString("\nauthor: ")
		b.WriteString(book.Author)
	}
	b.WriteString("\nchapter: ")
	b.WriteString(ch.DisplayTitle())
	b.WriteString("\nsource: ")
	b.WriteString(ch.URL)
	b.WriteString("\nexported: ")
	b.WriteString(time.Now().Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(content)
	b.WriteString("\n")
	return b.String()
}

// BookStore writes chapters with replace-on-commit semantics.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
type BookStore struct {
	baseDir string
	name    string
}

// NewBookStore creates a new BookStore.
func NewBookStore(baseDir, name string) *BookStore {
	return &BookStore{
		baseDir: baseDir,
		name:    name,
	}
}

// Dir returns the directory the book appears in after Commit.
func (s *BookStore) Dir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *BookStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

// Save implements shelf.ChapterStore.
func (s *BookStore) Save(ctx context.Context, book *shelf.Book, ch *shelf.Chapter, content string) error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), ChapterPath(ch))
	return os.WriteFile(fullPath, []byte(FormatChapter(book, ch, content)), 0644)
}

// Commit implements shelf.ChapterStore. A previous export of the same book
// is replaced.
func (s *BookStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.Dir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.Dir())
}

// Abort implements shelf.ChapterStore.
func (s *BookStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
