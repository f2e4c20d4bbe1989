package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of shelf.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, keyword string) ([]*shelf.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, keyword string) ([]*shelf.SearchResult, error) {
	return s.SearchFn(ctx, keyword)
}
