package filter

import (
	"moviedash/internal/metrics"
	"moviedash/pkg/models"
)

// View is the subset of a canonical table selected by a predicate set.
type View struct {
	Predicates Predicates     `json:"predicates"`
	Total      int            `json:"total"`
	Rows       []models.Movie `json:"rows"`
}

func (v View) Len() int { return len(v.Rows) }

func (v View) Empty() bool { return len(v.Rows) == 0 }

// Apply returns the rows of t that satisfy every predicate in p, in table
// order. A nil table yields an empty view. View rows are clones, so changing
// them never reaches the table.
func Apply(t *models.Table, p Predicates) View {
	view := View{Predicates: p, Rows: []models.Movie{}}
	if t == nil {
		return view
	}
	view.Total = len(t.Movies)

	if p.IsNeutral() {
		view.Rows = make([]models.Movie, 0, len(t.Movies))
		for _, mv := range t.Movies {
			view.Rows = append(view.Rows, mv.Clone())
		}
	} else {
		m := p.compile()
		for _, mv := range t.Movies {
			if m.match(mv) {
				view.Rows = append(view.Rows, mv.Clone())
			}
		}
	}
	metrics.FilterRows.Observe(float64(len(view.Rows)))
	return view
}
