// Package catalog implements the book workflows that sit on top of storage
// and extraction: adding a book from a source, loading its table of
// contents, and filling chapter content on first read.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/fwojciec/shelf"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxPages bounds how many linked pages one table of contents or
// chapter may span.
const DefaultMaxPages = 10

// Service coordinates fetching, extraction and persistence of books.
type Service struct {
	Sources   shelf.SourceService
	Books     shelf.BookService
	Chapters  shelf.ChapterService
	Fetcher   shelf.Fetcher
	Extractor shelf.Extractor

	// Sanitizer cleans chapter markup before it is stored. Optional.
	Sanitizer shelf.Sanitizer

	// Notifier receives cache-fill progress events. Optional.
	Notifier shelf.Notifier

	// Pool runs prefetch tasks. Prefetch is disabled when nil.
	Pool shelf.Executor

	// MaxPages bounds next-page links followed per chapter or table of
	// contents. Zero means DefaultMaxPages.
	MaxPages int

	// Prefetch is the number of chapters after a read chapter that are
	// filled in the background.
	Prefetch int

	Logger *slog.Logger

	fills singleflight.Group
}

// ChapterContent returns the content of a chapter, fetching and storing it
// on first access. Concurrent requests for the same chapter share a single
// fetch.
func (s *Service) ChapterContent(ctx context.Context, bookID string, index int) (string, error) {
	content, err := s.chapterContent(ctx, bookID, index)
	if err != nil {
		return "", err
	}
	s.prefetch(ctx, bookID, index)
	return content, nil
}

func (s *Service) chapterContent(ctx context.Context, bookID string, index int) (string, error) {
	ch, err := s.Chapters.FindChapter(ctx, bookID, index)
	if err != nil {
		return "", err
	}
	if ch.Content != "" {
		return ch.Content, nil
	}

	// The fill outlives any single caller so one cancelled reader cannot
	// fail the others waiting on the same chapter.
	key := bookID + "/" + strconv.Itoa(index)
	fillCtx := context.WithoutCancel(ctx)
	done := s.fills.DoChan(key, func() (any, error) {
		return s.fill(fillCtx, ch)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// fill fetches, stores and returns the content of an uncached chapter.
func (s *Service) fill(ctx context.Context, ch *shelf.Chapter) (string, error) {
	// A fill that finished just before this one started has already stored it.
	current, err := s.Chapters.FindChapter(ctx, ch.BookID, ch.Index)
	if err != nil {
		return "", err
	}
	if current.Content != "" {
		return current.Content, nil
	}

	book, err := s.Books.FindBookByID(ctx, ch.BookID)
	if err != nil {
		return "", err
	}
	src, err := s.Sources.FindSourceByURL(ctx, book.Origin)
	if err != nil {
		return "", err
	}
	if current.URL == "" {
		return "", shelf.Errorf(shelf.EINVALID, "chapter %d has no URL", current.Index)
	}

	s.notify(ctx, current, shelf.ContentFetching, nil)

	content, err := s.fetchContent(ctx, src, current.URL)
	if err != nil {
		s.notify(ctx, current, shelf.ContentFailed, err)
		return "", err
	}
	if s.Sanitizer != nil {
		content = s.Sanitizer.Sanitize(content)
	}

	if err := s.Chapters.SetChapterContent(ctx, current.BookID, current.Index, content); err != nil {
		s.notify(ctx, current, shelf.ContentFailed, err)
		return "", fmt.Errorf("storing chapter content: %w", err)
	}

	s.notify(ctx, current, shelf.ContentCached, nil)
	return content, nil
}

// fetchContent follows a chapter across its linked pages and joins the
// markup of each page in order.
func (s *Service) fetchContent(ctx context.Context, src *shelf.Source, chapterURL string) (string, error) {
	headers, err := src.Headers()
	if err != nil {
		return "", err
	}
	rule, err := src.ContentRule()
	if err != nil {
		return "", err
	}

	var parts []string
	err = s.walkPages(ctx, chapterURL, headers, func(body, pageURL string) (string, error) {
		page, err := s.Extractor.ExtractContent(body, pageURL, rule)
		if err != nil {
			return "", err
		}
		parts = append(parts, page.Content)
		return page.NextURL, nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "\n"), nil
}

// walkPages fetches firstURL and then each next-page URL returned by visit,
// stopping at a blank or already visited URL or after MaxPages pages.
func (s *Service) walkPages(ctx context.Context, firstURL string, headers map[string]string, visit func(body, pageURL string) (string, error)) error {
	visited := make(map[string]bool)
	next := firstURL
	for page := 0; next != "" && page < s.maxPages(); page++ {
		if visited[next] {
			break
		}
		visited[next] = true

		body, err := s.Fetcher.Fetch(ctx, next, headers)
		if err != nil {
			return err
		}
		next, err = visit(body, next)
		if err != nil {
			return err
		}
	}
	return nil
}

// prefetch fills the chapters following index in the background.
func (s *Service) prefetch(ctx context.Context, bookID string, index int) {
	if s.Pool == nil || s.Prefetch <= 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for i := index + 1; i <= index+s.Prefetch; i++ {
		s.Pool.Submit(func() {
			if _, err := s.chapterContent(ctx, bookID, i); err != nil && shelf.ErrorCode(err) != shelf.ENOTFOUND {
				s.logger().Debug("prefetch failed", "book", bookID, "chapter", i, "err", err)
			}
		})
	}
}

func (s *Service) notify(ctx context.Context, ch *shelf.Chapter, status string, cause error) {
	if s.Notifier == nil {
		return
	}
	event := shelf.ContentEvent{
		BookID:       ch.BookID,
		ChapterIndex: ch.Index,
		Status:       status,
	}
	if cause != nil {
		event.Error = shelf.ErrorMessage(cause)
	}
	if err := s.Notifier.Publish(context.WithoutCancel(ctx), shelf.ChannelChapterContent, event); err != nil {
		s.logger().Warn("publish failed", "channel", shelf.ChannelChapterContent, "err", err)
	}
}

func (s *Service) maxPages() int {
	if s.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return s.MaxPages
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// AddBook reads a book's detail page on the given source, stores the book
// and loads its table of contents. Adding a URL that is already stored
// returns the stored book.
func (s *Service) AddBook(ctx context.Context, bookURL, sourceURL string) (*shelf.Book, error) {
	bookURL = strings.TrimSpace(bookURL)
	if bookURL == "" {
		return nil, shelf.Errorf(shelf.EINVALID, "book URL required")
	}

	existing, err := s.Books.FindBookByURL(ctx, bookURL)
	if err == nil {
		return existing, nil
	}
	if shelf.ErrorCode(err) != shelf.ENOTFOUND {
		return nil, err
	}

	src, err := s.Sources.FindSourceByURL(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	headers, err := src.Headers()
	if err != nil {
		return nil, err
	}
	rule, err := src.DetailRule()
	if err != nil {
		return nil, err
	}

	body, err := s.Fetcher.Fetch(ctx, bookURL, headers)
	if err != nil {
		return nil, err
	}

	book := &shelf.Book{
		URL:        bookURL,
		Origin:     src.URL,
		OriginName: src.Name,
	}
	if err := s.Extractor.ExtractDetail(body, bookURL, rule, book); err != nil {
		return nil, err
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.Books.CreateBook(ctx, book); err != nil {
		if shelf.ErrorCode(err) == shelf.ECONFLICT {
			return s.Books.FindBookByURL(ctx, bookURL)
		}
		return nil, err
	}

	return s.loadChapters(ctx, src, book)
}

// RefreshChapters reloads a stored book's table of contents. Content cached
// for a chapter whose URL is unchanged is kept.
func (s *Service) RefreshChapters(ctx context.Context, bookID string) (*shelf.Book, error) {
	book, err := s.Books.FindBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	src, err := s.Sources.FindSourceByURL(ctx, book.Origin)
	if err != nil {
		return nil, err
	}
	return s.loadChapters(ctx, src, book)
}

func (s *Service) loadChapters(ctx context.Context, src *shelf.Source, book *shelf.Book) (*shelf.Book, error) {
	chapters, err := s.fetchTOC(ctx, src, book)
	if err != nil {
		return nil, fmt.Errorf("loading table of contents: %w", err)
	}
	if err := s.Chapters.ReplaceChapters(ctx, book.ID, chapters); err != nil {
		return nil, fmt.Errorf("storing chapters: %w", err)
	}

	total := len(chapters)
	upd := shelf.BookUpdate{TotalChapters: &total}
	if book.LatestChapter == "" && total > 0 {
		upd.LatestChapter = &chapters[total-1].Title
	}
	return s.Books.UpdateBook(ctx, book.ID, upd)
}

// fetchTOC collects the chapters of every table of contents page. For a
// reversed listing the page order is reversed too, so the oldest chapter
// ends up at index 0.
func (s *Service) fetchTOC(ctx context.Context, src *shelf.Source, book *shelf.Book) ([]*shelf.Chapter, error) {
	headers, err := src.Headers()
	if err != nil {
		return nil, err
	}
	rule, err := src.TOCRule()
	if err != nil {
		return nil, err
	}

	tocURL := book.TocURL
	if tocURL == "" {
		tocURL = book.URL
	}

	var pages [][]*shelf.Chapter
	err = s.walkPages(ctx, tocURL, headers, func(body, pageURL string) (string, error) {
		page, err := s.Extractor.ExtractTOC(body, pageURL, rule)
		if err != nil {
			return "", err
		}
		pages = append(pages, page.Chapters)
		return page.NextURL, nil
	})
	if err != nil {
		return nil, err
	}

	if rule.IsReverse {
		slices.Reverse(pages)
	}
	chapters := slices.Concat(pages...)
	for i, ch := range chapters {
		ch.BookID = book.ID
		ch.Index = i
	}
	return chapters, nil
}

// UpdateProgress records the reader's position in a book.
func (s *Service) UpdateProgress(ctx context.Context, bookID string, index, pos int) (*shelf.Book, error) {
	if pos < 0 {
		return nil, shelf.Errorf(shelf.EINVALID, "chapter position must not be negative")
	}
	ch, err := s.Chapters.FindChapter(ctx, bookID, index)
	if err != nil {
		return nil, err
	}
	title := ch.DisplayTitle()
	return s.Books.UpdateBook(ctx, bookID, shelf.BookUpdate{
		ChapterIndex: &index,
		ChapterPos:   &pos,
		ChapterTitle: &title,
	})
}

// DeleteBook removes a book and its chapters.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	return s.Books.DeleteBook(ctx, bookID)
}

// ExportBook writes every chapter of a book to store, filling uncached
// chapters on the way. Content passes through conv when it is not nil.
// Nothing is committed unless every chapter succeeds.
func (s *Service) ExportBook(ctx context.Context, bookID string, store shelf.ChapterStore, conv shelf.Converter) (n int, err error) {
	book, err := s.Books.FindBookByID(ctx, bookID)
	if err != nil {
		return 0, err
	}
	chapters, err := s.Chapters.FindChapters(ctx, shelf.ChapterFilter{BookID: bookID})
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			if abortErr := store.Abort(); abortErr != nil {
				s.logger().Warn("abort export failed", "book", bookID, "err", abortErr)
			}
		}
	}()

	for _, ch := range chapters {
		content, err := s.chapterContent(ctx, bookID, ch.Index)
		if err != nil {
			return 0, fmt.Errorf("chapter %d: %w", ch.Index, err)
		}
		if conv != nil {
			if content, err = conv.Convert(content); err != nil {
				return 0, fmt.Errorf("chapter %d: %w", ch.Index, err)
			}
		}
		if err := store.Save(ctx, book, ch, content); err != nil {
			return 0, fmt.Errorf("saving chapter %d: %w", ch.Index, err)
		}
	}

	if err := store.Commit(); err != nil {
		return 0, fmt.Errorf("committing export: %w", err)
	}
	return len(chapters), nil
}
