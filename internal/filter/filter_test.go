package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviedash/internal/normalize"
	"moviedash/pkg/models"
)

func buildTable(t *testing.T, raws ...models.RawRecord) *models.Table {
	t.Helper()
	movies, d := normalize.New().Table(raws)
	return &models.Table{Source: "test", Movies: movies, Degraded: d}
}

func scenarioTable(t *testing.T) *models.Table {
	return buildTable(t,
		models.RawRecord{"Title": "A", "Genre": "Action", "Rating": 8.5, "Votes": "1,000", "Duration": "2h 0m"},
		models.RawRecord{"Title": "B", "Genre": "Drama", "Rating": 7.0, "Votes": "500", "Duration": "1h 30m"},
		models.RawRecord{"Title": "C", "Genre": "Action", "Rating": 9.0, "Votes": "2,000", "Duration": "3h 10m"},
	)
}

func titles(rows []models.Movie) []string {
	out := make([]string, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Title)
	}
	return out
}

func TestApply_EndToEndScenario(t *testing.T) {
	table := scenarioTable(t)

	view := Apply(table, Predicates{Genres: []string{"Action"}, MinRating: 8.0})
	assert.Equal(t, []string{"A", "C"}, titles(view.Rows))
	assert.Equal(t, 3, view.Total)

	top := TopN(view, 2)
	require.False(t, top.NoResults)
	assert.Equal(t, []string{"C", "A"}, titles(top.Rows))
	assert.Equal(t, 9.0, top.Rows[0].Rating.Value)
	assert.Equal(t, 8.5, top.Rows[1].Rating.Value)

	share := GenreVoteShare(view)
	require.False(t, share.NoData)
	require.Len(t, share.Groups, 1)
	assert.Equal(t, "Action", share.Groups[0].Genre)
	assert.Equal(t, int64(3000), share.Groups[0].Votes)
	assert.InDelta(t, 100.0, share.Groups[0].Share, 1e-9)
}

func TestApply_NeutralPredicatesReturnWholeTable(t *testing.T) {
	table := buildTable(t,
		models.RawRecord{"Title": "A", "Genre": "Action", "Rating": 8.5, "Votes": "1,000", "Duration": "2h 0m"},
		models.RawRecord{"Title": "NoRating", "Genre": "", "Rating": "n/a", "Votes": "", "Duration": ""},
	)

	p := Predicates{Duration: BucketAll}
	require.True(t, p.IsNeutral())

	view := Apply(table, p)
	assert.Equal(t, table.Movies, view.Rows)
}

func TestApply_IsIdempotent(t *testing.T) {
	table := scenarioTable(t)
	predicateSets := []Predicates{
		{},
		{Genres: []string{"action"}},
		{Duration: BucketMedium, MinVotes: 500},
		{MinRating: 9.5},
	}

	for _, p := range predicateSets {
		once := Apply(table, p)
		again := Apply(&models.Table{Movies: once.Rows}, p)
		assert.Equal(t, once.Rows, again.Rows)
	}
}

func TestApply_DoesNotMutateTable(t *testing.T) {
	table := scenarioTable(t)
	before := make([]models.Movie, 0, len(table.Movies))
	for _, m := range table.Movies {
		before = append(before, m.Clone())
	}

	view := Apply(table, Predicates{Genres: []string{"Action"}})
	_ = TopN(view, 1)
	_ = SortedByRating(view)
	_ = PerGenreLeader(view)

	view.Rows[0].Genres[0] = "Mutated"
	points := RatingVotePoints(Apply(table, Predicates{}))
	require.NotEmpty(t, points)
	points[0].Genres[0] = "Mutated"

	neutral := Apply(table, Predicates{})
	neutral.Rows[1].Genres[0] = "Mutated"

	assert.Equal(t, before, table.Movies)
}

func TestApply_NilTable(t *testing.T) {
	view := Apply(nil, Predicates{MinRating: 5})
	assert.True(t, view.Empty())
	assert.NotNil(t, view.Rows)
}

func TestApply_MultiGenreMatchesAny(t *testing.T) {
	table := buildTable(t,
		models.RawRecord{"Title": "Both", "Genre": "Action, Comedy", "Rating": 6.0, "Votes": "1", "Duration": 100},
		models.RawRecord{"Title": "Comedy", "Genre": "Comedy", "Rating": 6.0, "Votes": "1", "Duration": 100},
		models.RawRecord{"Title": "Horror", "Genre": "Horror", "Rating": 6.0, "Votes": "1", "Duration": 100},
	)

	view := Apply(table, Predicates{Genres: []string{"ACTION", "drama"}})
	assert.Equal(t, []string{"Both"}, titles(view.Rows))

	view = Apply(table, Predicates{Genres: []string{"comedy"}})
	assert.Equal(t, []string{"Both", "Comedy"}, titles(view.Rows))
}

func TestApply_BlankGenreSelectionIsNeutral(t *testing.T) {
	table := scenarioTable(t)
	p := Predicates{Genres: []string{"", "  "}}
	assert.True(t, p.IsNeutral())
	assert.Equal(t, 3, Apply(table, p).Len())
}

func TestApply_DurationBucketBoundaries(t *testing.T) {
	table := buildTable(t,
		models.RawRecord{"Title": "119", "Duration": 119},
		models.RawRecord{"Title": "120", "Duration": 120},
		models.RawRecord{"Title": "180", "Duration": "3h"},
		models.RawRecord{"Title": "181", "Duration": "3h 1m"},
	)

	tests := []struct {
		bucket DurationBucket
		want   []string
	}{
		{BucketAll, []string{"119", "120", "180", "181"}},
		{BucketShort, []string{"119"}},
		{BucketMedium, []string{"120", "180"}},
		{BucketLong, []string{"181"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			view := Apply(table, Predicates{Duration: tt.bucket})
			assert.Equal(t, tt.want, titles(view.Rows))
		})
	}
}

func TestApply_RatingThreshold(t *testing.T) {
	table := buildTable(t,
		models.RawRecord{"Title": "Eight", "Rating": "8.0"},
		models.RawRecord{"Title": "Unknown", "Rating": "oops"},
		models.RawRecord{"Title": "Seven", "Rating": "7.9"},
	)

	assert.Equal(t, []string{"Eight", "Unknown", "Seven"}, titles(Apply(table, Predicates{MinRating: 0}).Rows))
	assert.Equal(t, []string{"Eight"}, titles(Apply(table, Predicates{MinRating: 8.0}).Rows))
}

func TestApply_VotesThresholdIsInclusive(t *testing.T) {
	table := buildTable(t,
		models.RawRecord{"Title": "Exact", "Votes": "1K"},
		models.RawRecord{"Title": "Below", "Votes": "999"},
		models.RawRecord{"Title": "Above", "Votes": "1,001"},
	)

	view := Apply(table, Predicates{MinVotes: 1000})
	assert.Equal(t, []string{"Exact", "Above"}, titles(view.Rows))
}

func TestParseDurationBucket(t *testing.T) {
	tests := map[string]DurationBucket{
		"":        BucketAll,
		"All":     BucketAll,
		"< 2 hrs": BucketShort,
		"2–3 hrs": BucketMedium,
		"2-3 hrs": BucketMedium,
		"> 3 hrs": BucketLong,
		"short":   BucketShort,
		"LONG":    BucketLong,
	}
	for label, want := range tests {
		got, err := ParseDurationBucket(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}

	_, err := ParseDurationBucket("forever")
	assert.Error(t, err)
}
