package source

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/squirrel"

	"moviedash/pkg/database"
	"moviedash/pkg/models"
)

const DefaultTable = "movies"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads every row of one table of a sqlite database, read-only.
type SQLite struct {
	Path  string
	Table string

	fp fingerprinter
}

func NewSQLite(path, table string) *SQLite {
	if table == "" {
		table = DefaultTable
	}
	return &SQLite{Path: path, Table: table}
}

func (s *SQLite) Identity() string {
	p := s.Path
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return "sqlite:" + p + "#" + s.Table
}

func (s *SQLite) Fingerprint(_ context.Context) (string, error) {
	sum, err := s.fp.fingerprint(s.Path, s.Path+"-wal")
	if err != nil {
		return "", unavailable(s.Identity(), "fingerprint", err)
	}
	return sum, nil
}

func (s *SQLite) selectAll() (string, []any, error) {
	if !identifier.MatchString(s.Table) {
		return "", nil, fmt.Errorf("invalid table name %q", s.Table)
	}
	return squirrel.Select("*").From(s.Table).ToSql()
}

func (s *SQLite) Records(ctx context.Context) ([]models.RawRecord, error) {
	query, args, err := s.selectAll()
	if err != nil {
		return nil, unavailable(s.Identity(), "build query", err)
	}

	db, err := database.OpenReadOnly(s.Path)
	if err != nil {
		return nil, unavailable(s.Identity(), "open", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(s.Identity(), "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, unavailable(s.Identity(), "columns", err)
	}

	var out []models.RawRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, unavailable(s.Identity(), "scan", err)
		}

		rec := make(models.RawRecord, len(cols))
		for i, c := range cols {
			rec[c] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(s.Identity(), "rows", err)
	}
	return out, nil
}
