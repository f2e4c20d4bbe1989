package shelf

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms chapter markup into Markdown for plain-text reading.
	Convert(html string) (string, error)
}

// Sanitizer strips unsafe markup from HTML fetched from third-party sites.
type Sanitizer interface {
	Sanitize(html string) string
}
