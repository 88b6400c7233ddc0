package models

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// RawRecord is one row as supplied by a data source, before any type
// normalization. Keys are column names; values are whatever the driver or
// reader produced (string, int64, float64, []byte or nil).
type RawRecord map[string]any

// Field returns the value stored under name, matching keys case-insensitively.
func (r RawRecord) Field(name string) any {
	if v, ok := r[name]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return v
		}
	}
	return nil
}

// Rating is a 0-10 score that may be unknown. An unknown rating is never
// treated as zero by aggregates.
type Rating struct {
	Value float64 `json:"value"`
	Known bool    `json:"known"`
}

func KnownRating(v float64) Rating { return Rating{Value: v, Known: true} }

func UnknownRating() Rating { return Rating{} }

// Less orders ratings with every unknown rating below every known one.
func (r Rating) Less(o Rating) bool {
	if r.Known != o.Known {
		return !r.Known
	}
	return r.Value < o.Value
}

// Movie is the canonical, normalized form of a movie entry.
//
// Movies are value types: the canonical table hands out copies and nothing
// downstream is allowed to write back into it.
type Movie struct {
	ID              string   `json:"id"`
	Row             int      `json:"row"`
	Title           string   `json:"title"`
	Genres          []string `json:"genres"`
	Rating          Rating   `json:"rating"`
	Votes           int64    `json:"votes"`
	DurationMinutes int      `json:"duration_minutes"`
}

// Clone returns a copy of m that shares no memory with it.
func (m Movie) Clone() Movie {
	m.Genres = slices.Clone(m.Genres)
	return m
}

// Degradation counts fields that failed strict parsing during a load and
// fell back to their sentinel value.
type Degradation struct {
	Votes    int `json:"votes"`
	Rating   int `json:"rating"`
	Duration int `json:"duration"`
	Genre    int `json:"genre"`
}

func (d Degradation) Total() int {
	return d.Votes + d.Rating + d.Duration + d.Genre
}

// Table is the canonical table produced by one load cycle.
type Table struct {
	LoadID      string      `json:"load_id"`
	Source      string      `json:"source"`
	Fingerprint string      `json:"fingerprint"`
	LoadedAt    time.Time   `json:"loaded_at"`
	Movies      []Movie     `json:"movies"`
	Degraded    Degradation `json:"degraded"`
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Movies)
}

// Genres returns every genre present in the table, sorted.
func (t *Table) Genres() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, m := range t.Movies {
		for _, g := range m.Genres {
			key := strings.ToLower(g)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}
