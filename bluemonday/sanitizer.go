// Package bluemonday strips unsafe markup from chapter content fetched from
// third-party sites.
package bluemonday

import (
	"strings"

	"github.com/fwojciec/shelf"
	"github.com/microcosm-cc/bluemonday"
)

// Ensure Sanitizer implements shelf.Sanitizer at compile time.
var _ shelf.Sanitizer = (*Sanitizer)(nil)

// Sanitizer applies a user-generated-content policy: scripts, styles,
// event handlers and embedded frames are removed, text formatting and
// images are kept.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &Sanitizer{policy: p}
}

// Sanitize implements shelf.Sanitizer.
func (s *Sanitizer) Sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
