package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBook(t *testing.T, db *sqlite.DB) *shelf.Book {
	t.Helper()
	book := newBook("https://a.example/b/1")
	require.NoError(t, sqlite.NewBookService(db).CreateBook(context.Background(), book))
	return book
}

func toc(n int) []*shelf.Chapter {
	chapters := make([]*shelf.Chapter, n)
	for i := range chapters {
		chapters[i] = &shelf.Chapter{
			Index: i,
			Title: fmt.Sprintf("Chapter %d", i+1),
			URL:   fmt.Sprintf("https://a.example/c/%d", i),
		}
	}
	return chapters
}

func TestChapterService_ReplaceChapters(t *testing.T) {
	t.Parallel()

	t.Run("replaces prior chapter set", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		book := setupBook(t, db)
		svc := sqlite.NewChapterService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChapters(ctx, book.ID, toc(5)))
		require.NoError(t, svc.ReplaceChapters(ctx, book.ID, toc(3)))

		chapters, err := svc.FindChapters(ctx, shelf.ChapterFilter{BookID: book.ID})
		require.NoError(t, err)
		require.Len(t, chapters, 3)
		for i, ch := range chapters {
			assert.Equal(t, i, ch.Index)
			assert.Equal(t, book.ID, ch.BookID)
		}
	})

	t.Run("carries cached content to chapters with the same URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		book := setupBook(t, db)
		svc := sqlite.NewChapterService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChapters(ctx, book.ID, toc(2)))
		require.NoError(t, svc.SetChapterContent(ctx, book.ID, 1, "<p>two</p>"))

		// A new first chapter shifts the old second chapter to index 2.
		refreshed := append([]*shelf.Chapter{{Title: "Prologue", URL: "https://a.example/c/p"}}, toc(2)...)
		for i, ch := range refreshed {
			ch.Index = i
		}
		require.NoError(t, svc.ReplaceChapters(ctx, book.ID, refreshed))

		ch, err := svc.FindChapter(ctx, book.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, "<p>two</p>", ch.Content)

		ch, err = svc.FindChapter(ctx, book.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, ch.Content)
	})

	t.Run("rejects non-contiguous indices", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		book := setupBook(t, db)
		chapters := toc(2)
		chapters[1].Index = 5

		err := sqlite.NewChapterService(db).ReplaceChapters(context.Background(), book.ID, chapters)

		assert.Equal(t, shelf.EINVALID, shelf.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown book", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewChapterService(setupTestDB(t)).ReplaceChapters(context.Background(), "missing", toc(1))

		assert.Equal(t, shelf.ENOTFOUND, shelf.ErrorCode(err))
	})
}

func TestChapterService_FindChapter(t *testing.T) {
	t.Parallel()

	t.Run("content is empty until set", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		book := setupBook(t, db)
		svc := sqlite.NewChapterService(db)
		ctx := context.Background()
		require.NoError(t, svc.ReplaceChapters(ctx, book.ID, toc(1)))

		ch, err := svc.FindChapter(ctx, book.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, ch.Content)
		assert.Equal(t, "Chapter 1", ch.Title)

		require.NoError(t, svc.SetChapterContent(ctx, book.ID, 0, "<p>text</p>"))

		ch, err = svc.FindChapter(ctx, book.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, "<p>text</p>", ch.Content)
		assert.Len(t, ch.ContentHash, 16)
	})

	t.Run("returns ENOTFOUND for unknown index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		book := setupBook(t, db)

		_, err := sqlite.NewChapterService(db).FindChapter(context.Background(), book.ID, 7)

		assert.Equal(t, shelf.ENOTFOUND, shelf.ErrorCode(err))
	})
}

func TestChapterService_FindChapters(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	book := setupBook(t, db)
	svc := sqlite.NewChapterService(db)
	ctx := context.Background()
	require.NoError(t, svc.ReplaceChapters(ctx, book.ID, toc(10)))
	require.NoError(t, svc.SetChapterContent(ctx, book.ID, 4, "<p>cached</p>"))

	chapters, err := svc.FindChapters(ctx, shelf.ChapterFilter{BookID: book.ID, Offset: 3, Limit: 2})

	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 3, chapters[0].Index)
	assert.Empty(t, chapters[0].ContentHash)
	assert.Equal(t, 4, chapters[1].Index)
	assert.NotEmpty(t, chapters[1].ContentHash, "cached chapters carry a hash")
	assert.Empty(t, chapters[1].Content, "content is not loaded in listings")
}

func TestChapterService_SetChapterContent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	book := setupBook(t, db)

	err := sqlite.NewChapterService(db).SetChapterContent(context.Background(), book.ID, 0, "x")

	assert.Equal(t, shelf.ENOTFOUND, shelf.ErrorCode(err))
}
