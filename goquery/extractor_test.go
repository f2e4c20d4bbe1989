package goquery_test

import (
	"sync/atomic"
	"testing"

	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// failingQuerier panics on its nth query and matches nothing otherwise.
type failingQuerier struct {
	n     int64
	calls atomic.Int64
}

func (q *failingQuerier) QueryAll(root *html.Node, expr string) ([]*html.Node, error) {
	if q.calls.Add(1) == q.n {
		panic("broken expression")
	}
	return nil, nil
}

func TestExtractor_ExtractSearch(t *testing.T) {
	t.Parallel()

	rule := &shelf.SearchRule{
		BookList: "div.book",
		Name:     "h3",
		Author:   "span.author&&Author: (.*)",
		CoverURL: "img",
		BookURL:  "a",
		Kind:     "span.kind",
	}

	t.Run("accepts only candidates with name and URL in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="book"><h3>First</h3><span class="author">Author: Ann</span><a href="/b/1">go</a><img src="/c/1.jpg"></div>
<div class="book"><h3></h3><a href="/b/2">go</a></div>
<div class="book"><h3>Third</h3><a href="/b/3">go</a><span class="kind">Fantasy</span></div>
</body></html>`

		books, err := goquery.NewExtractor().ExtractSearch(html, "http://h/search?q=x", rule)

		require.NoError(t, err)
		require.Len(t, books, 2)

		assert.Equal(t, "First", books[0].Name)
		assert.Equal(t, "Ann", books[0].Author)
		assert.Equal(t, "http://h/b/1", books[0].URL)
		assert.Equal(t, "http://h/c/1.jpg", books[0].CoverURL)

		assert.Equal(t, "Third", books[1].Name)
		assert.Equal(t, "http://h/b/3", books[1].URL)
		assert.Equal(t, "Fantasy", books[1].Kind)
		assert.Empty(t, books[1].Author)
	})

	t.Run("skips candidates without URL", func(t *testing.T) {
		t.Parallel()

		html := `<div class="book"><h3>No link</h3></div>`

		books, err := goquery.NewExtractor().ExtractSearch(html, "http://h/", rule)

		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("drops only the candidate whose extraction panics", func(t *testing.T) {
		t.Parallel()

		html := `<div class="book"><h3>One</h3><a href="/b/1">go</a></div>
<div class="book"><h3>Two</h3><a href="/b/2">go</a></div>
<div class="book"><h3>Three</h3><a href="/b/3">go</a></div>`
		xpathRule := *rule
		xpathRule.Kind = "@XPath://span"

		x := goquery.NewExtractor(goquery.WithXPath(&failingQuerier{n: 2}))
		books, err := x.ExtractSearch(html, "http://h/", &xpathRule)

		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "One", books[0].Name)
		assert.Equal(t, "Three", books[1].Name)
	})

	t.Run("treats the whole document as one candidate without a list rule", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Only</h1><a class="read" href="/b/9">read</a>`
		rule := &shelf.SearchRule{Name: "h1", BookURL: "a.read"}

		books, err := goquery.NewExtractor().ExtractSearch(html, "http://h/", rule)

		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Only", books[0].Name)
		assert.Equal(t, "http://h/b/9", books[0].URL)
	})

	t.Run("malformed field degrades to empty", func(t *testing.T) {
		t.Parallel()

		html := `<div class="book"><h3>Name</h3><a href="/b/1">go</a></div>`
		rule := &shelf.SearchRule{BookList: "div.book", Name: "h3", BookURL: "a", Author: "span[", Intro: "p&&("}

		books, err := goquery.NewExtractor().ExtractSearch(html, "http://h/", rule)

		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Empty(t, books[0].Author)
		assert.Empty(t, books[0].Intro)
	})

	t.Run("nil rule yields nothing", func(t *testing.T) {
		t.Parallel()

		books, err := goquery.NewExtractor().ExtractSearch(`<p>x</p>`, "http://h/", nil)

		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestExtractor_ExtractDetail(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<h1>Detail Name</h1>
<p class="author"></p>
<div class="intro">  A long
 story. </div>
<img class="cover" src="cover.jpg">
<a class="toc" href="/toc/1">Chapters</a>
</body></html>`

	rule := &shelf.DetailRule{
		Name:     "h1",
		Author:   "p.author",
		Intro:    "div.intro",
		CoverURL: "img.cover",
		TocURL:   "a.toc",
		Kind:     "span.kind",
	}

	t.Run("merges non-empty fields into base book", func(t *testing.T) {
		t.Parallel()

		book := &shelf.Book{
			Name:   "Search Name",
			Author: "Search Author",
			Kind:   "Search Kind",
			URL:    "http://h/b/1",
		}

		err := goquery.NewExtractor().ExtractDetail(html, "http://h/b/1", rule, book)

		require.NoError(t, err)
		assert.Equal(t, "Detail Name", book.Name)
		assert.Equal(t, "Search Author", book.Author, "blank value must not overwrite")
		assert.Equal(t, "Search Kind", book.Kind, "unmatched rule must not overwrite")
		assert.Equal(t, "A long story.", book.Intro)
		assert.Equal(t, "http://h/b/cover.jpg", book.CoverURL)
		assert.Equal(t, "http://h/toc/1", book.TocURL)
		assert.Equal(t, "http://h/b/1", book.URL)
	})

	t.Run("requires base book", func(t *testing.T) {
		t.Parallel()

		err := goquery.NewExtractor().ExtractDetail(html, "http://h/", rule, nil)

		assert.Equal(t, shelf.EINVALID, shelf.ErrorCode(err))
	})
}

func TestExtractor_ExtractTOC(t *testing.T) {
	t.Parallel()

	html := `<ul id="list">
<li><a href="/c/1">One</a></li>
<li><a href="/c/2">Two</a></li>
<li><a href="/c/3">Three</a></li>
<li><a href="/c/4">Four</a></li>
<li><a href="/c/5">Five</a></li>
</ul>
<a class="next" href="/toc?page=2">next</a>`

	t.Run("indexes chapters in collection order", func(t *testing.T) {
		t.Parallel()

		rule := &shelf.TOCRule{ChapterList: "#list li", ChapterName: "a", ChapterURL: "a", NextTocURL: "a.next"}

		page, err := goquery.NewExtractor().ExtractTOC(html, "http://h/toc", rule)

		require.NoError(t, err)
		require.Len(t, page.Chapters, 5)
		for i, ch := range page.Chapters {
			assert.Equal(t, i, ch.Index)
		}
		assert.Equal(t, "One", page.Chapters[0].Title)
		assert.Equal(t, "http://h/c/1", page.Chapters[0].URL)
		assert.Equal(t, "Five", page.Chapters[4].Title)
		assert.Equal(t, "http://h/toc?page=2", page.NextURL)
	})

	t.Run("reverse renumbers without losing chapters", func(t *testing.T) {
		t.Parallel()

		rule := &shelf.TOCRule{ChapterList: "#list li", ChapterName: "a", ChapterURL: "a", IsReverse: true}

		page, err := goquery.NewExtractor().ExtractTOC(html, "http://h/toc", rule)

		require.NoError(t, err)
		require.Len(t, page.Chapters, 5)
		for i, ch := range page.Chapters {
			assert.Equal(t, i, ch.Index)
		}
		assert.Equal(t, "Five", page.Chapters[0].Title)
		assert.Equal(t, "One", page.Chapters[4].Title)
		assert.Empty(t, page.NextURL)
	})

	t.Run("untitled entries do not consume an index", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li><a href="/c/1">One</a></li><li><a href="/ad"></a></li><li><a href="/c/2">Two</a></li></ul>`
		rule := &shelf.TOCRule{ChapterList: "li", ChapterName: "a", ChapterURL: "a"}

		page, err := goquery.NewExtractor().ExtractTOC(html, "http://h/", rule)

		require.NoError(t, err)
		require.Len(t, page.Chapters, 2)
		assert.Equal(t, "Two", page.Chapters[1].Title)
		assert.Equal(t, 1, page.Chapters[1].Index)
	})
}

func TestExtractor_ExtractContent(t *testing.T) {
	t.Parallel()

	html := `<div id="content"><p>First line.</p><p>Visit example.com for more</p></div>
<div id="content"><p>Second block.</p></div>
<a id="next" href="2.html">next page</a>`

	t.Run("concatenates inner markup and follows next URL", func(t *testing.T) {
		t.Parallel()

		rule := &shelf.ContentRule{Content: "#content", NextContentURL: "#next"}

		page, err := goquery.NewExtractor().ExtractContent(html, "http://h/c/1.html", rule)

		require.NoError(t, err)
		assert.Equal(t, "<p>First line.</p><p>Visit example.com for more</p><p>Second block.</p>", page.Content)
		assert.Equal(t, "http://h/c/2.html", page.NextURL)
	})

	t.Run("applies replace rules", func(t *testing.T) {
		t.Parallel()

		rule := &shelf.ContentRule{Content: "#content", ReplaceRegex: "##<p>Visit[^<]*</p>####First##1st"}

		page, err := goquery.NewExtractor().ExtractContent(html, "http://h/c/1.html", rule)

		require.NoError(t, err)
		assert.Equal(t, "<p>1st line.</p><p>Second block.</p>", page.Content)
	})

	t.Run("absence yields empty content", func(t *testing.T) {
		t.Parallel()

		rule := &shelf.ContentRule{Content: "#missing"}

		page, err := goquery.NewExtractor().ExtractContent(html, "http://h/", rule)

		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Empty(t, page.NextURL)
	})
}
