package goquery

import (
	"regexp"
	"strings"
)

// applyReplacements applies a replace rule of the form
// "##pattern##replacement##pattern2##replacement2...". A trailing pattern
// without a replacement deletes its matches. Patterns that do not compile
// are skipped.
func applyReplacements(content, rule string) string {
	if strings.TrimSpace(rule) == "" || content == "" {
		return content
	}
	parts := strings.Split(strings.TrimPrefix(rule, "##"), "##")
	for i := 0; i < len(parts); i += 2 {
		if parts[i] == "" {
			continue
		}
		re, err := regexp.Compile(parts[i])
		if err != nil {
			continue
		}
		var repl string
		if i+1 < len(parts) {
			repl = parts[i+1]
		}
		content = re.ReplaceAllString(content, repl)
	}
	return content
}
