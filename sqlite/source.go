package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/shelf"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ shelf.SourceService = (*SourceService)(nil)

const sourceColumns = `id, url, name, source_group, enabled, weight, header, search_url,
	rule_search, rule_detail, rule_toc, rule_content, created_at, updated_at`

// SourceService implements shelf.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

// CreateSource creates a new source.
func (s *SourceService) CreateSource(ctx context.Context, src *shelf.Source) error {
	if err := src.Validate(); err != nil {
		return err
	}

	src.ID = uuid.New().String()
	now := time.Now().UTC()
	src.CreatedAt = now
	src.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, sourceArgs(src)...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return shelf.Errorf(shelf.ECONFLICT, "source %q already exists", src.URL)
	}
	return nil
}

// UpsertSources creates or replaces sources keyed by URL. An existing
// source keeps its ID, creation time and position among equal weights.
func (s *SourceService) UpsertSources(ctx context.Context, srcs []*shelf.Source) error {
	for _, src := range srcs {
		if err := src.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, src := range srcs {
		src.ID = uuid.New().String()
		src.CreatedAt = now
		src.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sources (`+sourceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(url) DO UPDATE SET
				name = excluded.name,
				source_group = excluded.source_group,
				enabled = excluded.enabled,
				weight = excluded.weight,
				header = excluded.header,
				search_url = excluded.search_url,
				rule_search = excluded.rule_search,
				rule_detail = excluded.rule_detail,
				rule_toc = excluded.rule_toc,
				rule_content = excluded.rule_content,
				updated_at = excluded.updated_at
		`, sourceArgs(src)...); err != nil {
			return fmt.Errorf("upsert source %q: %w", src.URL, err)
		}

		var createdAt string
		if err := tx.QueryRowContext(ctx, "SELECT id, created_at FROM sources WHERE url = ?", src.URL).
			Scan(&src.ID, &createdAt); err != nil {
			return err
		}
		if src.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*shelf.Source, error) {
	return s.findOne(ctx, "id", id)
}

// FindSourceByURL retrieves a source by its origin URL.
func (s *SourceService) FindSourceByURL(ctx context.Context, url string) (*shelf.Source, error) {
	return s.findOne(ctx, "url", url)
}

func (s *SourceService) findOne(ctx context.Context, column, value string) (*shelf.Source, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE "+column+" = ?", value)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shelf.Errorf(shelf.ENOTFOUND, "source not found")
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// FindSources retrieves sources matching the filter, ordered by descending
// weight with ties in insertion order.
func (s *SourceService) FindSources(ctx context.Context, filter shelf.SourceFilter) ([]*shelf.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + sourceColumns + " FROM sources WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Group != nil {
		query.WriteString(" AND source_group = ?")
		args = append(args, *filter.Group)
	}
	if filter.Enabled != nil {
		query.WriteString(" AND enabled = ?")
		args = append(args, boolToInt(*filter.Enabled))
	}

	query.WriteString(" ORDER BY weight DESC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var srcs []*shelf.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}

	return srcs, rows.Err()
}

// UpdateSource updates an existing source.
func (s *SourceService) UpdateSource(ctx context.Context, id string, upd shelf.SourceUpdate) (*shelf.Source, error) {
	src, err := s.FindSourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		src.Name = *upd.Name
	}
	if upd.Group != nil {
		src.Group = *upd.Group
	}
	if upd.Enabled != nil {
		src.Enabled = *upd.Enabled
	}
	if upd.Weight != nil {
		src.Weight = *upd.Weight
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}

	src.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE sources
		SET name = ?, source_group = ?, enabled = ?, weight = ?, updated_at = ?
		WHERE id = ?
	`, src.Name, src.Group, boolToInt(src.Enabled), src.Weight, formatTime(src.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return src, nil
}

// DeleteSource permanently removes a source. Books added from it are kept.
func (s *SourceService) DeleteSource(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return shelf.Errorf(shelf.ENOTFOUND, "source not found")
	}

	return nil
}

func sourceArgs(src *shelf.Source) []any {
	return []any{
		src.ID, src.URL, src.Name, src.Group, boolToInt(src.Enabled), src.Weight,
		string(src.Header), src.SearchURL,
		string(src.RuleSearch), string(src.RuleDetail), string(src.RuleTOC), string(src.RuleContent),
		formatTime(src.CreatedAt), formatTime(src.UpdatedAt),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*shelf.Source, error) {
	var src shelf.Source
	var enabled int
	var header, ruleSearch, ruleDetail, ruleTOC, ruleContent string
	var createdAt, updatedAt string

	if err := row.Scan(&src.ID, &src.URL, &src.Name, &src.Group, &enabled, &src.Weight,
		&header, &src.SearchURL, &ruleSearch, &ruleDetail, &ruleTOC, &ruleContent,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	src.Enabled = enabled != 0
	src.Header = shelf.JSONText(header)
	src.RuleSearch = shelf.JSONText(ruleSearch)
	src.RuleDetail = shelf.JSONText(ruleDetail)
	src.RuleTOC = shelf.JSONText(ruleTOC)
	src.RuleContent = shelf.JSONText(ruleContent)

	var err error
	if src.CreatedAt, src.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &src, nil
}
