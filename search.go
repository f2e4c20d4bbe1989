package shelf

import "context"

// SearchResult is the read-only view of a search hit returned to callers.
// It is never persisted.
type SearchResult struct {
	Name          string `json:"name"`
	Author        string `json:"author"`
	Intro         string `json:"intro"`
	CoverURL      string `json:"coverUrl"`
	BookURL       string `json:"bookUrl"`
	LatestChapter string `json:"latestChapterTitle"`
	WordCount     string `json:"wordCount"`
	Kind          string `json:"kind"`
	SourceName    string `json:"sourceName"`
	SourceURL     string `json:"sourceUrl"`
}

// NewSearchResult projects a book into a search result.
func NewSearchResult(b *Book) *SearchResult {
	return &SearchResult{
		Name:          b.Name,
		Author:        b.Author,
		Intro:         b.Intro,
		CoverURL:      b.CoverURL,
		BookURL:       b.URL,
		LatestChapter: b.LatestChapter,
		WordCount:     b.WordCount,
		Kind:          b.Kind,
		SourceName:    b.OriginName,
		SourceURL:     b.Origin,
	}
}

// Searcher queries every enabled source for a keyword.
type Searcher interface {
	// Search returns the merged hits of all enabled sources. Sources that
	// fail contribute nothing; a search where every source fails returns an
	// empty list rather than an error.
	Search(ctx context.Context, keyword string) ([]*SearchResult, error)
}
