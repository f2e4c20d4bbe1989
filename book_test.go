package shelf_test

import (
	"testing"

	"github.com/fwojciec/shelf"
	"github.com/stretchr/testify/assert"
)

func TestBook_Validate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shelf.EINVALID, shelf.ErrorCode((&shelf.Book{URL: "https://a.example/b/1"}).Validate()))
	assert.Equal(t, shelf.EINVALID, shelf.ErrorCode((&shelf.Book{Name: "Book"}).Validate()))
	assert.NoError(t, (&shelf.Book{Name: "Book", URL: "https://a.example/b/1"}).Validate())
}

func TestBook_UnreadChapters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		book  shelf.Book
		count int
	}{
		{"no chapters", shelf.Book{}, 0},
		{"at first chapter", shelf.Book{TotalChapters: 10}, 9},
		{"at last chapter", shelf.Book{TotalChapters: 10, ChapterIndex: 9}, 0},
		{"past last chapter", shelf.Book{TotalChapters: 10, ChapterIndex: 12}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.count, tt.book.UnreadChapters())
		})
	}
}

func TestNewSearchResult(t *testing.T) {
	t.Parallel()

	book := &shelf.Book{
		Name:       "Book",
		Author:     "Author",
		URL:        "https://a.example/b/1",
		Origin:     "https://a.example",
		OriginName: "A",
	}

	res := shelf.NewSearchResult(book)

	assert.Equal(t, "Book", res.Name)
	assert.Equal(t, "Author", res.Author)
	assert.Equal(t, "https://a.example/b/1", res.BookURL)
	assert.Equal(t, "A", res.SourceName)
	assert.Equal(t, "https://a.example", res.SourceURL)
}

func TestChapter_DisplayTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Prologue", (&shelf.Chapter{Title: "Prologue"}).DisplayTitle())
	assert.Equal(t, "Chapter 3", (&shelf.Chapter{Index: 2}).DisplayTitle())
}
