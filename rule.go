package shelf

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSONText holds a JSON document as text. Source documents in the wild carry
// rule documents and header sets either as embedded objects or as
// JSON-encoded strings; both decode to the same JSONText.
type JSONText string

// UnmarshalJSON accepts an embedded JSON value or a string containing one.
func (t *JSONText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = JSONText(s)
		return nil
	}
	*t = JSONText(data)
	return nil
}

// MarshalJSON emits the text as embedded JSON when it is valid JSON,
// otherwise as a plain string.
func (t JSONText) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(string(t)) == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(t)) {
		return []byte(t), nil
	}
	return json.Marshal(string(t))
}

// IsZero reports whether the text is blank.
func (t JSONText) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// SearchRule extracts candidate books from a search results page.
type SearchRule struct {
	// BookList selects the repeated candidate nodes. When empty the whole
	// document is treated as a single candidate.
	BookList      string `json:"bookList"`
	Name          string `json:"name"`
	Author        string `json:"author"`
	Intro         string `json:"intro"`
	CoverURL      string `json:"coverUrl"`
	BookURL       string `json:"bookUrl"`
	LatestChapter string `json:"latestChapter"`
	WordCount     string `json:"wordCount"`
	Kind          string `json:"kind"`
}

// DetailRule extracts book metadata from a book's detail page.
type DetailRule struct {
	Name          string `json:"name"`
	Author        string `json:"author"`
	Intro         string `json:"intro"`
	CoverURL      string `json:"coverUrl"`
	Kind          string `json:"kind"`
	LatestChapter string `json:"latestChapter"`
	TocURL        string `json:"tocUrl"`
	WordCount     string `json:"wordCount"`
}

// TOCRule extracts the ordered chapter list of a book.
type TOCRule struct {
	ChapterList string `json:"chapterList"`
	ChapterName string `json:"chapterName"`
	ChapterURL  string `json:"chapterUrl"`
	NextTocURL  string `json:"nextTocUrl"`

	// IsReverse marks sources that list chapters newest first. The collected
	// chapters are reversed before indices are assigned.
	IsReverse bool `json:"isReverse"`
}

// ContentRule extracts the text of a single chapter.
type ContentRule struct {
	Content        string `json:"content"`
	NextContentURL string `json:"nextContentUrl"`

	// ReplaceRegex holds one or more "##pattern##replacement" segments
	// applied to the extracted content. The replacement may be omitted.
	ReplaceRegex string `json:"replaceRegex"`
}

// decodeRule decodes a rule document. A blank document yields a zero rule.
func decodeRule[T any](text JSONText, kind string) (*T, error) {
	var rule T
	if text.IsZero() {
		return &rule, nil
	}
	if err := json.Unmarshal([]byte(text), &rule); err != nil {
		return nil, Errorf(EINVALID, "malformed %s rule: %v", kind, err)
	}
	return &rule, nil
}
