package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.ChapterStore = (*ChapterStore)(nil)

// ChapterStore is a mock implementation of shelf.ChapterStore.
type ChapterStore struct {
	SaveFn   func(ctx context.Context, book *shelf.Book, ch *shelf.Chapter, content string) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *ChapterStore) Save(ctx context.Context, book *shelf.Book, ch *shelf.Chapter, content string) error {
	return s.SaveFn(ctx, book, ch, content)
}

func (s *ChapterStore) Commit() error {
	return s.CommitFn()
}

func (s *ChapterStore) Abort() error {
	return s.AbortFn()
}
