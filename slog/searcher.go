package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelf"
)

// Ensure LoggingSearcher implements shelf.Searcher.
var _ shelf.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   shelf.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next shelf.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, keyword string) (results []*shelf.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"keyword", keyword,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, keyword)
}
