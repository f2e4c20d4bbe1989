// Package search fans a keyword out to every enabled source and merges the
// hits into one list whose order depends only on source weight and page
// order, never on which source answered first.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/shelf"
)

// FirstPage is the page number substituted into search URL templates.
const FirstPage = 1

// Ensure Searcher implements shelf.Searcher at compile time.
var _ shelf.Searcher = (*Searcher)(nil)

// Searcher queries every enabled source concurrently. A source that fails
// at any step contributes no hits and never affects the others.
type Searcher struct {
	Sources   shelf.SourceService
	Fetcher   shelf.Fetcher
	Extractor shelf.Extractor

	// Pool runs one task per source. Nil runs each source on its own
	// goroutine.
	Pool shelf.Executor

	// SourceTimeout bounds one source's fetch. Zero leaves the bound to the
	// fetcher's own timeout.
	SourceTimeout time.Duration

	Logger *slog.Logger
}

// sourceResult holds the outcome of searching a single source.
type sourceResult struct {
	books []*shelf.Book
	err   error
}

// Search implements shelf.Searcher.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]*shelf.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, shelf.Errorf(shelf.EINVALID, "search keyword required")
	}

	enabled := true
	srcs, err := s.Sources.FindSources(ctx, shelf.SourceFilter{Enabled: &enabled})
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	// Each task writes only its own slot, so merge order is dispatch order.
	results := make([]sourceResult, len(srcs))
	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		s.submit(func() {
			defer wg.Done()
			results[i] = s.searchSource(ctx, src, keyword)
		})
	}
	wg.Wait()

	merged := make([]*shelf.SearchResult, 0)
	for i, r := range results {
		src := srcs[i]
		if r.err != nil {
			s.logger().Warn("source search failed",
				"source", src.Name,
				"url", src.URL,
				"code", shelf.ErrorCode(r.err),
				"err", r.err,
			)
			continue
		}
		for _, book := range r.books {
			book.Origin = src.URL
			book.OriginName = src.Name
			merged = append(merged, shelf.NewSearchResult(book))
		}
	}

	return merged, nil
}

func (s *Searcher) searchSource(ctx context.Context, src *shelf.Source, keyword string) (result sourceResult) {
	defer func() {
		if r := recover(); r != nil {
			result = sourceResult{err: shelf.Errorf(shelf.EINTERNAL, "search panicked: %v", r)}
		}
	}()

	if strings.TrimSpace(src.SearchURL) == "" {
		return sourceResult{err: shelf.Errorf(shelf.EINVALID, "source has no search URL")}
	}

	searchURL := BuildSearchURL(src.SearchURL, src.URL, keyword, FirstPage)

	headers, err := src.Headers()
	if err != nil {
		return sourceResult{err: err}
	}

	rule, err := src.SearchRule()
	if err != nil {
		return sourceResult{err: err}
	}

	if s.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.SourceTimeout)
		defer cancel()
	}

	body, err := s.Fetcher.Fetch(ctx, searchURL, headers)
	if err != nil {
		return sourceResult{err: err}
	}

	books, err := s.Extractor.ExtractSearch(body, searchURL, rule)
	if err != nil {
		return sourceResult{err: err}
	}
	return sourceResult{books: books}
}

func (s *Searcher) submit(task func()) {
	if s.Pool == nil {
		go task()
		return
	}
	s.Pool.Submit(task)
}

func (s *Searcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

var placeholders = []struct {
	key, page string
}{
	{"{{key}}", "{{page}}"},
	{"{key}", "{page}"},
}

// BuildSearchURL substitutes the query-escaped keyword and page number into
// a search URL template. Both {{key}}/{{page}} and {key}/{page} spellings
// are recognized. A relative template is resolved against the source URL.
func BuildSearchURL(template, sourceURL, keyword string, page int) string {
	escaped := url.QueryEscape(keyword)
	p := strconv.Itoa(page)

	result := strings.TrimSpace(template)
	for _, ph := range placeholders {
		result = strings.ReplaceAll(result, ph.key, escaped)
		result = strings.ReplaceAll(result, ph.page, p)
	}

	ref, err := url.Parse(result)
	if err != nil || ref.IsAbs() {
		return result
	}
	base, err := url.Parse(sourceURL)
	if err != nil || !base.IsAbs() {
		return result
	}
	return base.ResolveReference(ref).String()
}
