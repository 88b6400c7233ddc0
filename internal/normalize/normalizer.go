// Package normalize converts raw movie records into canonical records.
//
// Every parser in this package is total: malformed input degrades to a
// sentinel (0, nil or an unknown rating) and is reported through a bool,
// never through an error. The record-level Normalizer counts those
// degradations so a load can report how much of its input was defaulted.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/gosimple/slug"

	"moviedash/internal/logger"
	"moviedash/internal/metrics"
	"moviedash/pkg/models"
)

// Column names of the movie record shape.
const (
	FieldTitle    = "Title"
	FieldGenre    = "Genre"
	FieldRating   = "Rating"
	FieldVotes    = "Votes"
	FieldDuration = "Duration"
)

// Normalizer builds canonical movies from raw records.
type Normalizer struct {
	log *charmlog.Logger
}

func New() *Normalizer {
	return &Normalizer{log: logger.With("component", "normalize")}
}

// Record normalizes one raw record found at position row of its source.
func (n *Normalizer) Record(raw models.RawRecord, row int) (models.Movie, models.Degradation) {
	var d models.Degradation

	title := strings.TrimSpace(stringify(raw.Field(FieldTitle)))

	votes, ok := ParseVotes(raw.Field(FieldVotes))
	if !ok {
		d.Votes++
		n.degraded(FieldVotes, row, raw.Field(FieldVotes))
	}

	rating, ok := ParseRating(raw.Field(FieldRating))
	if !ok {
		d.Rating++
		n.degraded(FieldRating, row, raw.Field(FieldRating))
	}

	minutes, ok := ParseDuration(raw.Field(FieldDuration))
	if !ok {
		d.Duration++
		n.degraded(FieldDuration, row, raw.Field(FieldDuration))
	}

	genres := ParseGenres(raw.Field(FieldGenre))
	if len(genres) == 0 {
		d.Genre++
		n.degraded(FieldGenre, row, raw.Field(FieldGenre))
	}

	return models.Movie{
		ID:              movieID(title, row),
		Row:             row,
		Title:           title,
		Genres:          genres,
		Rating:          rating,
		Votes:           votes,
		DurationMinutes: minutes,
	}, d
}

// Table normalizes every raw record, keeping source order.
func (n *Normalizer) Table(raws []models.RawRecord) ([]models.Movie, models.Degradation) {
	out := make([]models.Movie, 0, len(raws))
	var total models.Degradation
	for i, raw := range raws {
		m, d := n.Record(raw, i)
		out = append(out, m)
		total.Votes += d.Votes
		total.Rating += d.Rating
		total.Duration += d.Duration
		total.Genre += d.Genre
	}
	if total.Total() > 0 {
		n.log.Info("fields degraded to defaults",
			"votes", total.Votes,
			"rating", total.Rating,
			"duration", total.Duration,
			"genre", total.Genre,
		)
	}
	return out, total
}

func (n *Normalizer) degraded(field string, row int, value any) {
	metrics.FieldParseDegraded.WithLabelValues(strings.ToLower(field)).Inc()
	n.log.Debug("field parse degraded", "field", field, "row", row, "value", value)
}

func movieID(title string, row int) string {
	base := slug.Make(title)
	if base == "" {
		base = "movie"
	}
	return base + "-" + strconv.Itoa(row)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
