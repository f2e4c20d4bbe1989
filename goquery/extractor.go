package goquery

import (
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shelf"
)

// Ensure Extractor implements shelf.Extractor at compile time.
var _ shelf.Extractor = (*Extractor)(nil)

// Extractor implements shelf.Extractor with an Evaluator.
type Extractor struct {
	eval *Evaluator
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...EvaluatorOption) *Extractor {
	return &Extractor{eval: NewEvaluator(opts...)}
}

// ExtractSearch implements shelf.Extractor.
func (x *Extractor) ExtractSearch(html, baseURL string, rule *shelf.SearchRule) ([]*shelf.Book, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		rule = &shelf.SearchRule{}
	}
	base := ParseBaseURL(baseURL)

	items := doc.Selection
	if strings.TrimSpace(rule.BookList) != "" {
		items = x.eval.All(doc.Selection, rule.BookList)
	}

	var books []*shelf.Book
	items.Each(func(_ int, item *goquery.Selection) {
		if book := x.searchCandidate(item, rule, base); book != nil {
			books = append(books, book)
		}
	})
	return books, nil
}

// searchCandidate extracts one search-list item. It returns nil for items
// that fail validation or whose extraction panics.
func (x *Extractor) searchCandidate(item *goquery.Selection, rule *shelf.SearchRule, base *url.URL) (book *shelf.Book) {
	defer func() {
		if recover() != nil {
			book = nil
		}
	}()

	book = &shelf.Book{
		Name:          x.eval.Text(item, rule.Name),
		Author:        x.eval.Text(item, rule.Author),
		Intro:         x.eval.Text(item, rule.Intro),
		CoverURL:      x.eval.URL(item, rule.CoverURL, "src", base),
		URL:           x.eval.URL(item, rule.BookURL, "href", base),
		LatestChapter: x.eval.Text(item, rule.LatestChapter),
		WordCount:     x.eval.Text(item, rule.WordCount),
		Kind:          x.eval.Text(item, rule.Kind),
	}
	if err := book.Validate(); err != nil {
		return nil
	}
	return book
}

// ExtractDetail implements shelf.Extractor.
func (x *Extractor) ExtractDetail(html, baseURL string, rule *shelf.DetailRule, book *shelf.Book) error {
	if book == nil {
		return shelf.Errorf(shelf.EINVALID, "detail extraction requires a base book")
	}
	doc, err := parseHTML(html)
	if err != nil {
		return err
	}
	if rule == nil {
		return nil
	}
	base := ParseBaseURL(baseURL)
	root := doc.Selection

	merge(&book.Name, x.eval.Text(root, rule.Name))
	merge(&book.Author, x.eval.Text(root, rule.Author))
	merge(&book.Intro, x.eval.Text(root, rule.Intro))
	merge(&book.CoverURL, x.eval.URL(root, rule.CoverURL, "src", base))
	merge(&book.Kind, x.eval.Text(root, rule.Kind))
	merge(&book.LatestChapter, x.eval.Text(root, rule.LatestChapter))
	merge(&book.TocURL, x.eval.URL(root, rule.TocURL, "href", base))
	merge(&book.WordCount, x.eval.Text(root, rule.WordCount))
	return nil
}

func merge(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// ExtractTOC implements shelf.Extractor. Entries without a title are
// dropped and do not consume an index. A reversed rule reverses the
// collected entries before they are numbered.
func (x *Extractor) ExtractTOC(html, baseURL string, rule *shelf.TOCRule) (*shelf.TOCPage, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	page := &shelf.TOCPage{}
	if rule == nil {
		return page, nil
	}
	base := ParseBaseURL(baseURL)

	x.eval.All(doc.Selection, rule.ChapterList).Each(func(_ int, item *goquery.Selection) {
		title := x.eval.Text(item, rule.ChapterName)
		if title == "" {
			return
		}
		page.Chapters = append(page.Chapters, &shelf.Chapter{
			Title: title,
			URL:   x.eval.URL(item, rule.ChapterURL, "href", base),
		})
	})

	if rule.IsReverse {
		slices.Reverse(page.Chapters)
	}
	for i, ch := range page.Chapters {
		ch.Index = i
	}

	page.NextURL = x.eval.URL(doc.Selection, rule.NextTocURL, "href", base)
	return page, nil
}

// ExtractContent implements shelf.Extractor.
func (x *Extractor) ExtractContent(html, baseURL string, rule *shelf.ContentRule) (*shelf.ContentPage, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	page := &shelf.ContentPage{}
	if rule == nil {
		return page, nil
	}
	base := ParseBaseURL(baseURL)

	page.Content = applyReplacements(x.eval.HTML(doc.Selection, rule.Content), rule.ReplaceRegex)
	page.NextURL = x.eval.URL(doc.Selection, rule.NextContentURL, "href", base)
	return page, nil
}

func parseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, shelf.Errorf(shelf.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}
