// Package htmlquery provides the XPath rule dialect using antchfx/htmlquery.
package htmlquery

import (
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Querier evaluates XPath expressions against parsed HTML.
// Compiled expressions are cached; Querier is safe for concurrent use.
type Querier struct {
	mu    sync.RWMutex
	cache map[string]*xpath.Expr
}

// NewQuerier creates a new Querier.
func NewQuerier() *Querier {
	return &Querier{cache: make(map[string]*xpath.Expr)}
}

// QueryAll returns the nodes matching expr evaluated with root as the
// context node. Attributes are read with the rule's @attr suffix rather than
// an XPath attribute step.
func (q *Querier) QueryAll(root *html.Node, expr string) ([]*html.Node, error) {
	compiled, err := q.compile(expr)
	if err != nil {
		return nil, err
	}
	return htmlquery.QuerySelectorAll(root, compiled), nil
}

func (q *Querier) compile(expr string) (*xpath.Expr, error) {
	q.mu.RLock()
	compiled, ok := q.cache[expr]
	q.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	q.cache[expr] = compiled
	q.mu.Unlock()
	return compiled, nil
}
