package goquery

import (
	"regexp"
	"strings"
)

const (
	cssPrefix   = "@css:"
	xpathPrefix = "@xpath:"
)

var attrNamePattern = regexp.MustCompile(`^[A-Za-z_][\w:.-]*$`)

// expr is a parsed rule expression.
//
//	[@css:]<selector>[@<attr>][&&<regex>]
//	@XPath:<expression>[@<attr>][&&<regex>]
//
// A selector starting with "/" is treated as XPath without the prefix.
type expr struct {
	selector string
	xpath    bool
	attr     string
	pattern  string
}

func parseExpr(rule string) expr {
	var x expr
	rule = strings.TrimSpace(rule)

	switch {
	case hasPrefixFold(rule, cssPrefix):
		rule = rule[len(cssPrefix):]
	case hasPrefixFold(rule, xpathPrefix):
		rule = rule[len(xpathPrefix):]
		x.xpath = true
	case strings.HasPrefix(rule, "/"):
		x.xpath = true
	}

	if i := strings.Index(rule, "&&"); i >= 0 {
		x.pattern = strings.TrimSpace(strings.ReplaceAll(rule[i+2:], "##", ""))
		rule = rule[:i]
	}

	rule = strings.TrimSpace(rule)
	if i := strings.LastIndex(rule, "@"); i >= 0 && attrNamePattern.MatchString(rule[i+1:]) {
		// In XPath "/@href" and "[@id" are part of the expression.
		if i == 0 || !strings.ContainsRune("/[(=,| ", rune(rule[i-1])) || !x.xpath {
			x.attr = rule[i+1:]
			rule = strings.TrimSpace(rule[:i])
		}
	}

	x.selector = rule
	return x
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
