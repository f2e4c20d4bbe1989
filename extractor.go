package shelf

// TOCPage holds the chapters found on one table of contents page.
type TOCPage struct {
	// Chapters are indexed 0..N-1 in the order they will be stored.
	Chapters []*Chapter

	// NextURL is the absolute URL of the following page, if any.
	NextURL string
}

// ContentPage holds the chapter text found on one content page.
type ContentPage struct {
	// Content is the inner markup of every matched node, in document order.
	Content string

	// NextURL is the absolute URL of the following page, if any.
	NextURL string
}

// Extractor applies rule documents to raw HTML. A field that fails to
// evaluate degrades to empty rather than aborting the extraction.
// Relative URLs are resolved against baseURL.
type Extractor interface {
	// ExtractSearch returns the candidates on a search results page that
	// carry both a name and a book URL, in document order. Origin fields
	// are left for the caller to fill.
	ExtractSearch(html, baseURL string, rule *SearchRule) ([]*Book, error)

	// ExtractDetail merges metadata from a detail page into book. Fields
	// are only overwritten by non-empty values.
	ExtractDetail(html, baseURL string, rule *DetailRule, book *Book) error

	// ExtractTOC returns the titled chapters on a table of contents page.
	ExtractTOC(html, baseURL string, rule *TOCRule) (*TOCPage, error)

	// ExtractContent returns the chapter markup on a content page.
	ExtractContent(html, baseURL string, rule *ContentRule) (*ContentPage, error)
}
