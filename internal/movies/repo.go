package movies

import (
	"context"
	"errors"
	"strings"

	"moviedash/internal/catalog"
	"moviedash/internal/filter"
	"moviedash/internal/source"
	"moviedash/pkg/models"
)

// Repo serves filtered views of the canonical table of one source.
type Repo struct {
	Catalog *catalog.Catalog
	Source  source.Source
}

type ListQuery struct {
	Q          string // keyword search in title
	Sort       string // "rating" or table order
	Predicates filter.Predicates
	Limit      int
	Offset     int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func NewRepo(cat *catalog.Catalog, src source.Source) *Repo {
	return &Repo{Catalog: cat, Source: src}
}

// SortRating orders List results by rating, highest first, unrated last.
const SortRating = "rating"

// Table returns the current canonical table, loading it if needed. When the
// source has gone away the cached table is dropped so it is not served stale.
func (r *Repo) Table(ctx context.Context) (*models.Table, error) {
	t, err := r.Catalog.Load(ctx, r.Source)
	if errors.Is(err, source.ErrSourceUnavailable) {
		r.Catalog.Invalidate(r.Source.Identity())
	}
	return t, err
}

func (r *Repo) Reload(ctx context.Context) (*models.Table, error) {
	return r.Catalog.Reload(ctx, r.Source)
}

// View loads the table and applies p to it.
func (r *Repo) View(ctx context.Context, p filter.Predicates) (filter.View, error) {
	t, err := r.Table(ctx)
	if err != nil {
		return filter.View{}, err
	}
	return filter.Apply(t, p), nil
}

// List returns one page of the filtered rows plus the number of matches.
func (r *Repo) List(ctx context.Context, q ListQuery) (int, []models.Movie, error) {
	v, err := r.View(ctx, q.Predicates)
	if err != nil {
		return 0, nil, err
	}

	rows := v.Rows
	if strings.EqualFold(q.Sort, SortRating) {
		rows = filter.SortedByRating(v)
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		matched := make([]models.Movie, 0, len(rows))
		for _, m := range rows {
			if strings.Contains(strings.ToLower(m.Title), kw) {
				matched = append(matched, m)
			}
		}
		rows = matched
	}

	limit := q.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(rows)
	if offset >= total {
		return total, []models.Movie{}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return total, rows[offset:end], nil
}

// GetByID returns the movie with id, or nil when there is none.
func (r *Repo) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	t, err := r.Table(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range t.Movies {
		if m.ID == id {
			out := m.Clone()
			return &out, nil
		}
	}
	return nil, nil
}
