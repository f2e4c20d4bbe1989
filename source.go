package shelf

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Source describes one external book site: how to search it, which headers
// to send, and the rule documents used to read its pages. The URL is the
// stable key that ties a Book back to the source that produced it.
type Source struct {
	ID          string   `json:"id,omitempty"`
	URL         string   `json:"bookSourceUrl"`
	Name        string   `json:"bookSourceName"`
	Group       string   `json:"bookSourceGroup,omitempty"`
	Enabled     bool     `json:"enabled"`
	Weight      int      `json:"weight"`
	Header      JSONText `json:"header,omitempty"`
	SearchURL   string   `json:"searchUrl,omitempty"`
	RuleSearch  JSONText `json:"ruleSearch,omitempty"`
	RuleDetail  JSONText `json:"ruleBookInfo,omitempty"`
	RuleTOC     JSONText `json:"ruleToc,omitempty"`
	RuleContent JSONText `json:"ruleContent,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the source contains invalid fields.
// Rule documents are not checked here; a malformed rule only surfaces when
// the matching extraction mode runs.
func (s *Source) Validate() error {
	if s.URL == "" {
		return Errorf(EINVALID, "source URL required")
	}
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	return nil
}

// Headers decodes the source's header set.
func (s *Source) Headers() (map[string]string, error) {
	headers := map[string]string{}
	if s.Header.IsZero() {
		return headers, nil
	}
	if err := json.Unmarshal([]byte(s.Header), &headers); err != nil {
		return nil, Errorf(EINVALID, "malformed header for source %q: %v", s.URL, err)
	}
	return headers, nil
}

// SearchRule decodes the source's search rule document.
func (s *Source) SearchRule() (*SearchRule, error) {
	return decodeRule[SearchRule](s.RuleSearch, "search")
}

// DetailRule decodes the source's book detail rule document.
func (s *Source) DetailRule() (*DetailRule, error) {
	return decodeRule[DetailRule](s.RuleDetail, "detail")
}

// TOCRule decodes the source's table of contents rule document.
func (s *Source) TOCRule() (*TOCRule, error) {
	return decodeRule[TOCRule](s.RuleTOC, "toc")
}

// ContentRule decodes the source's content rule document.
func (s *Source) ContentRule() (*ContentRule, error) {
	return decodeRule[ContentRule](s.RuleContent, "content")
}

// ParseSources decodes source documents from a JSON array or a single JSON
// object. Sources that do not state otherwise are enabled.
func ParseSources(data []byte) ([]*Source, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, Errorf(EINVALID, "empty source document")
	}

	var raws []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, Errorf(EINVALID, "malformed source list: %v", err)
		}
	} else {
		raws = []json.RawMessage{data}
	}

	sources := make([]*Source, 0, len(raws))
	for i, raw := range raws {
		src := &Source{Enabled: true}
		if err := json.Unmarshal(raw, src); err != nil {
			return nil, Errorf(EINVALID, "malformed source at position %d: %v", i, err)
		}
		if err := src.Validate(); err != nil {
			return nil, Errorf(EINVALID, "source at position %d: %s", i, ErrorMessage(err))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// SourceService represents a service for managing sources.
type SourceService interface {
	// CreateSource creates a new source.
	// Returns ECONFLICT if a source with the same URL exists.
	CreateSource(ctx context.Context, src *Source) error

	// UpsertSources creates or replaces sources keyed by URL.
	UpsertSources(ctx context.Context, srcs []*Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if source does not exist.
	FindSourceByID(ctx context.Context, id string) (*Source, error)

	// FindSourceByURL retrieves a source by its origin URL.
	// Returns ENOTFOUND if source does not exist.
	FindSourceByURL(ctx context.Context, url string) (*Source, error)

	// FindSources retrieves sources matching the filter, ordered by
	// descending weight with ties in insertion order.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)

	// UpdateSource updates an existing source.
	// Returns ENOTFOUND if source does not exist.
	UpdateSource(ctx context.Context, id string, upd SourceUpdate) (*Source, error)

	// DeleteSource permanently removes a source.
	// Returns ENOTFOUND if source does not exist.
	DeleteSource(ctx context.Context, id string) error
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	ID      *string `json:"id"`
	URL     *string `json:"url"`
	Group   *string `json:"group"`
	Enabled *bool   `json:"enabled"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SourceUpdate represents fields that can be updated on a source.
type SourceUpdate struct {
	Name    *string `json:"name"`
	Group   *string `json:"group"`
	Enabled *bool   `json:"enabled"`
	Weight  *int    `json:"weight"`
}
