// Package filter applies predicate sets to the canonical movie table and
// computes the derived views the presentation layer renders.
//
// Everything here is a pure function of its inputs: the canonical table is
// never modified and no state is carried between calls.
package filter

import (
	"fmt"
	"strings"

	"moviedash/internal/normalize"
	"moviedash/pkg/models"
)

// DurationBucket is one of the fixed duration classification ranges.
type DurationBucket string

const (
	BucketAll    DurationBucket = "All"
	BucketShort  DurationBucket = "< 2 hrs"
	BucketMedium DurationBucket = "2–3 hrs"
	BucketLong   DurationBucket = "> 3 hrs"
)

const (
	shortLimit = 120
	longLimit  = 180
)

// Buckets lists the selectable buckets in display order.
var Buckets = []DurationBucket{BucketAll, BucketShort, BucketMedium, BucketLong}

// ParseDurationBucket accepts the display labels plus a few short forms.
// An empty label means no restriction.
func ParseDurationBucket(label string) (DurationBucket, error) {
	s := strings.ToLower(strings.Join(strings.Fields(label), " "))
	switch s {
	case "", "all", "any":
		return BucketAll, nil
	case "< 2 hrs", "<2 hrs", "short", "under2h":
		return BucketShort, nil
	case "2–3 hrs", "2-3 hrs", "medium", "2to3h":
		return BucketMedium, nil
	case "> 3 hrs", ">3 hrs", "long", "over3h":
		return BucketLong, nil
	}
	return BucketAll, fmt.Errorf("unknown duration bucket %q", label)
}

// Contains reports whether a duration in minutes falls in the bucket.
// The 2–3 hrs bucket is inclusive at both 120 and 180.
func (b DurationBucket) Contains(minutes int) bool {
	switch b {
	case BucketShort:
		return minutes < shortLimit
	case BucketMedium:
		return minutes >= shortLimit && minutes <= longLimit
	case BucketLong:
		return minutes > longLimit
	default:
		return true
	}
}

// Predicates is the set of independent constraints of one filter evaluation.
// The zero value is neutral and selects every row.
type Predicates struct {
	Genres    []string       `json:"genres,omitempty"`
	Duration  DurationBucket `json:"duration,omitempty"`
	MinRating float64        `json:"min_rating,omitempty"`
	MinVotes  int64          `json:"min_votes,omitempty"`
}

// IsNeutral reports whether the predicates select the whole table.
func (p Predicates) IsNeutral() bool {
	return len(p.genreKeys()) == 0 &&
		(p.Duration == "" || p.Duration == BucketAll) &&
		p.MinRating <= 0 &&
		p.MinVotes <= 0
}

func (p Predicates) genreKeys() map[string]bool {
	if len(p.Genres) == 0 {
		return nil
	}
	keys := make(map[string]bool, len(p.Genres))
	for _, g := range p.Genres {
		if k := normalize.GenreKey(g); k != "" {
			keys[k] = true
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return keys
}

// matcher is the compiled form of Predicates used during a scan.
type matcher struct {
	genres    map[string]bool
	duration  DurationBucket
	minRating float64
	minVotes  int64
}

func (p Predicates) compile() matcher {
	return matcher{
		genres:    p.genreKeys(),
		duration:  p.Duration,
		minRating: p.MinRating,
		minVotes:  p.MinVotes,
	}
}

func (m matcher) match(mv models.Movie) bool {
	if m.genres != nil && !m.anyGenre(mv.Genres) {
		return false
	}
	if !m.duration.Contains(mv.DurationMinutes) {
		return false
	}
	// A non-positive threshold is neutral, so unknown ratings pass it.
	if m.minRating > 0 && (!mv.Rating.Known || mv.Rating.Value < m.minRating) {
		return false
	}
	if mv.Votes < m.minVotes {
		return false
	}
	return true
}

func (m matcher) anyGenre(genres []string) bool {
	for _, g := range genres {
		if m.genres[normalize.GenreKey(g)] {
			return true
		}
	}
	return false
}
