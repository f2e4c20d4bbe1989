package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of shelf.SourceService.
type SourceService struct {
	CreateSourceFn    func(ctx context.Context, src *shelf.Source) error
	UpsertSourcesFn   func(ctx context.Context, srcs []*shelf.Source) error
	FindSourceByIDFn  func(ctx context.Context, id string) (*shelf.Source, error)
	FindSourceByURLFn func(ctx context.Context, url string) (*shelf.Source, error)
	FindSourcesFn     func(ctx context.Context, filter shelf.SourceFilter) ([]*shelf.Source, error)
	UpdateSourceFn    func(ctx context.Context, id string, upd shelf.SourceUpdate) (*shelf.Source, error)
	DeleteSourceFn    func(ctx context.Context, id string) error
}

func (s *SourceService) CreateSource(ctx context.Context, src *shelf.Source) error {
	return s.CreateSourceFn(ctx, src)
}

func (s *SourceService) UpsertSources(ctx context.Context, srcs []*shelf.Source) error {
	return s.UpsertSourcesFn(ctx, srcs)
}

func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*shelf.Source, error) {
	return s.FindSourceByIDFn(ctx, id)
}

func (s *SourceService) FindSourceByURL(ctx context.Context, url string) (*shelf.Source, error) {
	return s.FindSourceByURLFn(ctx, url)
}

func (s *SourceService) FindSources(ctx context.Context, filter shelf.SourceFilter) ([]*shelf.Source, error) {
	return s.FindSourcesFn(ctx, filter)
}

func (s *SourceService) UpdateSource(ctx context.Context, id string, upd shelf.SourceUpdate) (*shelf.Source, error) {
	return s.UpdateSourceFn(ctx, id, upd)
}

func (s *SourceService) DeleteSource(ctx context.Context, id string) error {
	return s.DeleteSourceFn(ctx, id)
}
