package goquery

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// NodeQuerier selects nodes below root with an expression in a non-CSS
// dialect. The htmlquery package provides an XPath implementation.
type NodeQuerier interface {
	QueryAll(root *html.Node, expr string) ([]*html.Node, error)
}

// Evaluator turns a selection and a rule expression into a string.
// Evaluation never fails: anything that does not match, compile or resolve
// yields the empty string or the unrefined value.
//
// Evaluator is safe for concurrent use. Compiled selectors and patterns are
// cached by expression.
type Evaluator struct {
	xpath NodeQuerier

	matchers sync.Map // string -> goquery.Matcher (nil on compile error)
	patterns sync.Map // string -> *regexp.Regexp (nil on compile error)
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithXPath enables the XPath dialect. Without it, XPath rules match nothing.
func WithXPath(q NodeQuerier) EvaluatorOption {
	return func(e *Evaluator) {
		e.xpath = q
	}
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text evaluates rule against sel and returns the whitespace-normalized text
// of the first match, or the named attribute when the rule carries one.
// A regex part returns its first capture group when it matches.
func (e *Evaluator) Text(sel *goquery.Selection, rule string) string {
	if strings.TrimSpace(rule) == "" {
		return ""
	}
	x := parseExpr(rule)
	first := e.selectExpr(sel, x).First()
	if first.Length() == 0 {
		return ""
	}

	var value string
	if x.attr != "" {
		value = strings.TrimSpace(first.AttrOr(x.attr, ""))
	} else {
		value = normalizeSpace(first.Text())
	}
	return e.refine(value, x.pattern)
}

// URL evaluates rule as a link. The attribute defaults to defaultAttr when
// the rule names none, and the value is resolved against base.
func (e *Evaluator) URL(sel *goquery.Selection, rule, defaultAttr string, base *url.URL) string {
	if strings.TrimSpace(rule) == "" {
		return ""
	}
	x := parseExpr(rule)
	if x.attr == "" {
		x.attr = defaultAttr
	}
	first := e.selectExpr(sel, x).First()
	if first.Length() == 0 {
		return ""
	}
	value := e.refine(strings.TrimSpace(first.AttrOr(x.attr, "")), x.pattern)
	return absoluteURL(value, base)
}

// HTML evaluates rule and concatenates the inner markup of every match in
// document order. A regex part refines the concatenated markup.
func (e *Evaluator) HTML(sel *goquery.Selection, rule string) string {
	if strings.TrimSpace(rule) == "" {
		return ""
	}
	x := parseExpr(rule)

	var b strings.Builder
	e.selectExpr(sel, x).Each(func(_ int, s *goquery.Selection) {
		h, err := s.Html()
		if err != nil {
			return
		}
		b.WriteString(h)
	})
	return e.refine(b.String(), x.pattern)
}

// All returns every node matched by the selector part of rule.
func (e *Evaluator) All(sel *goquery.Selection, rule string) *goquery.Selection {
	if strings.TrimSpace(rule) == "" {
		return sel.FindNodes()
	}
	return e.selectExpr(sel, parseExpr(rule))
}

// selectExpr returns the nodes below sel matched by x. An empty selector
// selects sel itself.
func (e *Evaluator) selectExpr(sel *goquery.Selection, x expr) *goquery.Selection {
	if x.selector == "" {
		return sel
	}
	if x.xpath {
		return e.selectXPath(sel, x.selector)
	}
	m := e.matcher(x.selector)
	if m == nil {
		return sel.FindNodes()
	}
	return sel.FindMatcher(m)
}

func (e *Evaluator) selectXPath(sel *goquery.Selection, expr string) *goquery.Selection {
	if e.xpath == nil {
		return sel.FindNodes()
	}
	var nodes []*html.Node
	for _, root := range sel.Nodes {
		found, err := e.xpath.QueryAll(root, expr)
		if err != nil {
			return sel.FindNodes()
		}
		nodes = append(nodes, found...)
	}
	// Absolute paths evaluate against the whole document; keep only the
	// nodes that live under sel.
	return sel.FindNodes(nodes...)
}

func (e *Evaluator) matcher(selector string) goquery.Matcher {
	if v, ok := e.matchers.Load(selector); ok {
		m, _ := v.(goquery.Matcher)
		return m
	}
	var m goquery.Matcher
	if compiled, err := cascadia.Compile(selector); err == nil {
		m = compiled
	}
	e.matchers.Store(selector, m)
	return m
}

func (e *Evaluator) pattern(expr string) *regexp.Regexp {
	if v, ok := e.patterns.Load(expr); ok {
		re, _ := v.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	e.patterns.Store(expr, re)
	return re
}

// refine applies pattern to value. No pattern, a pattern that does not
// compile or one that does not match all return value unchanged.
func (e *Evaluator) refine(value, pattern string) string {
	if pattern == "" {
		return value
	}
	re := e.pattern(pattern)
	if re == nil {
		return value
	}
	m := re.FindStringSubmatch(value)
	switch {
	case m == nil:
		return value
	case len(m) > 1:
		return m[1]
	default:
		return m[0]
	}
}

// ParseBaseURL parses a base URL for link resolution. It returns nil when
// raw is not an absolute URL.
func ParseBaseURL(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}

// absoluteURL keeps values that already carry a scheme, resolves the rest
// against base, and falls back to the raw value when that is impossible.
func absoluteURL(raw string, base *url.URL) string {
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.Scheme != "" || base == nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
