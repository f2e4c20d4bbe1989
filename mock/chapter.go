package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.ChapterService = (*ChapterService)(nil)

// ChapterService is a mock implementation of shelf.ChapterService.
type ChapterService struct {
	ReplaceChaptersFn   func(ctx context.Context, bookID string, chapters []*shelf.Chapter) error
	FindChapterFn       func(ctx context.Context, bookID string, index int) (*shelf.Chapter, error)
	FindChaptersFn      func(ctx context.Context, filter shelf.ChapterFilter) ([]*shelf.Chapter, error)
	SetChapterContentFn func(ctx context.Context, bookID string, index int, content string) error
}

func (s *ChapterService) ReplaceChapters(ctx context.Context, bookID string, chapters []*shelf.Chapter) error {
	return s.ReplaceChaptersFn(ctx, bookID, chapters)
}

func (s *ChapterService) FindChapter(ctx context.Context, bookID string, index int) (*shelf.Chapter, error) {
	return s.FindChapterFn(ctx, bookID, index)
}

func (s *ChapterService) FindChapters(ctx context.Context, filter shelf.ChapterFilter) ([]*shelf.Chapter, error) {
	return s.FindChaptersFn(ctx, filter)
}

func (s *ChapterService) SetChapterContent(ctx context.Context, bookID string, index int, content string) error {
	return s.SetChapterContentFn(ctx, bookID, index, content)
}
