package mock

import "github.com/fwojciec/shelf"

var _ shelf.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of shelf.Extractor.
type Extractor struct {
	ExtractSearchFn  func(html, baseURL string, rule *shelf.SearchRule) ([]*shelf.Book, error)
	ExtractDetailFn  func(html, baseURL string, rule *shelf.DetailRule, book *shelf.Book) error
	ExtractTOCFn     func(html, baseURL string, rule *shelf.TOCRule) (*shelf.TOCPage, error)
	ExtractContentFn func(html, baseURL string, rule *shelf.ContentRule) (*shelf.ContentPage, error)
}

func (e *Extractor) ExtractSearch(html, baseURL string, rule *shelf.SearchRule) ([]*shelf.Book, error) {
	return e.ExtractSearchFn(html, baseURL, rule)
}

func (e *Extractor) ExtractDetail(html, baseURL string, rule *shelf.DetailRule, book *shelf.Book) error {
	return e.ExtractDetailFn(html, baseURL, rule, book)
}

func (e *Extractor) ExtractTOC(html, baseURL string, rule *shelf.TOCRule) (*shelf.TOCPage, error) {
	return e.ExtractTOCFn(html, baseURL, rule)
}

func (e *Extractor) ExtractContent(html, baseURL string, rule *shelf.ContentRule) (*shelf.ContentPage, error) {
	return e.ExtractContentFn(html, baseURL, rule)
}
