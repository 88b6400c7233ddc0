package filter

import (
	"math"
	"slices"
	"sort"

	"moviedash/internal/normalize"
	"moviedash/pkg/models"
)

const (
	DefaultTopN          = 10
	DefaultHistogramBins = 20
	histogramLow         = normalize.MinRating
	histogramHigh        = normalize.MaxRating
)

// Ranking is the Top-N view. NoResults is set when the view had no rows.
type Ranking struct {
	Rows      []models.Movie `json:"rows"`
	NoResults bool           `json:"no_results"`
}

// byRatingThenVotes sorts rows by rating then votes, both descending.
// Unknown ratings sort after every known rating.
func byRatingThenVotes(rows []models.Movie) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Rating != b.Rating {
			return b.Rating.Less(a.Rating)
		}
		return a.Votes > b.Votes
	})
}

// TopN returns the n best rows by rating, ties broken by votes. A subset
// smaller than n returns every row.
func TopN(v View, n int) Ranking {
	if v.Empty() {
		return Ranking{Rows: []models.Movie{}, NoResults: true}
	}
	if n <= 0 {
		n = DefaultTopN
	}
	rows := make([]models.Movie, len(v.Rows))
	copy(rows, v.Rows)
	byRatingThenVotes(rows)
	if len(rows) > n {
		rows = rows[:n]
	}
	return Ranking{Rows: rows}
}

// SortedByRating returns every row of the view, best rated first.
func SortedByRating(v View) []models.Movie {
	rows := make([]models.Movie, len(v.Rows))
	copy(rows, v.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[j].Rating.Less(rows[i].Rating)
	})
	return rows
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreDistribution counts rows per genre, most frequent first. A row with
// several genres counts once for each of them.
func GenreDistribution(v View) []GenreCount {
	counts, order := groupByGenre(v.Rows, func(models.Movie) int64 { return 1 })
	out := make([]GenreCount, 0, len(order))
	for _, g := range order {
		out = append(out, GenreCount{Genre: g, Count: int(counts[g])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

type GenreVotes struct {
	Genre string  `json:"genre"`
	Votes int64   `json:"votes"`
	Share float64 `json:"share"`
}

// VoteShare is the share-of-total view over summed votes per genre.
type VoteShare struct {
	Groups []GenreVotes `json:"groups"`
	Total  int64        `json:"total"`
	NoData bool         `json:"no_data"`
}

// GenreVoteShare sums votes per genre, largest first. Shares are percentages
// of the sum over all groups, so they add up to 100 even when a row belongs
// to several genres. NoData is set when there are no rows or no votes.
func GenreVoteShare(v View) VoteShare {
	sums, order := groupByGenre(v.Rows, func(m models.Movie) int64 { return m.Votes })

	var total int64
	for _, g := range order {
		total += sums[g]
	}
	if total == 0 {
		return VoteShare{Groups: []GenreVotes{}, NoData: true}
	}

	out := VoteShare{Groups: make([]GenreVotes, 0, len(order)), Total: total}
	for _, g := range order {
		out.Groups = append(out.Groups, GenreVotes{
			Genre: g,
			Votes: sums[g],
			Share: float64(sums[g]) * 100 / float64(total),
		})
	}
	sort.SliceStable(out.Groups, func(i, j int) bool {
		if out.Groups[i].Votes != out.Groups[j].Votes {
			return out.Groups[i].Votes > out.Groups[j].Votes
		}
		return out.Groups[i].Genre < out.Groups[j].Genre
	})
	return out
}

// groupByGenre sums weight per canonical genre, returning genres in order of
// first appearance. Rows without a genre are not grouped.
func groupByGenre(rows []models.Movie, weight func(models.Movie) int64) (map[string]int64, []string) {
	sums := make(map[string]int64)
	keyToName := make(map[string]string)
	var order []string
	for _, m := range rows {
		w := weight(m)
		for _, g := range m.Genres {
			key := normalize.GenreKey(g)
			name, ok := keyToName[key]
			if !ok {
				name = g
				keyToName[key] = g
				order = append(order, g)
			}
			sums[name] += w
		}
	}
	return sums, order
}

type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram partitions [0,10] into equal-width bins. Rows with an unknown
// rating are counted in Unknown only.
type Histogram struct {
	Bins    []Bin `json:"bins"`
	Unknown int   `json:"unknown"`
	NoData  bool  `json:"no_data"`
}

// RatingHistogram counts ratings per bin. Each bin is [Low, High) except the
// last, which also holds the maximum rating.
func RatingHistogram(v View, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	width := (histogramHigh - histogramLow) / float64(bins)
	h := Histogram{Bins: make([]Bin, bins)}
	for i := range h.Bins {
		h.Bins[i] = Bin{
			Low:  histogramLow + float64(i)*width,
			High: histogramLow + float64(i+1)*width,
		}
	}

	known := 0
	for _, m := range v.Rows {
		if !m.Rating.Known {
			h.Unknown++
			continue
		}
		idx := int(math.Floor((m.Rating.Value - histogramLow) / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Bins[idx].Count++
		known++
	}
	h.NoData = known == 0
	return h
}

// Extremes holds the shortest and longest rows of a view.
type Extremes struct {
	Shortest models.Movie `json:"shortest"`
	Longest  models.Movie `json:"longest"`
	Found    bool         `json:"found"`
}

// DurationExtremes returns the rows with the minimum and maximum duration.
// On ties the first row encountered wins.
func DurationExtremes(v View) Extremes {
	if v.Empty() {
		return Extremes{}
	}
	e := Extremes{Shortest: v.Rows[0], Longest: v.Rows[0], Found: true}
	for _, m := range v.Rows[1:] {
		if m.DurationMinutes < e.Shortest.DurationMinutes {
			e.Shortest = m
		}
		if m.DurationMinutes > e.Longest.DurationMinutes {
			e.Longest = m
		}
	}
	return e
}

type GenreLeader struct {
	Genre string       `json:"genre"`
	Movie models.Movie `json:"movie"`
}

// PerGenreLeader returns the highest rated row of every genre in the view,
// sorted by genre. Ties keep the first row encountered; unknown ratings only
// lead a genre that has no known rating.
func PerGenreLeader(v View) []GenreLeader {
	leaders := make(map[string]int)
	var out []GenreLeader
	for _, m := range v.Rows {
		for _, g := range m.Genres {
			key := normalize.GenreKey(g)
			idx, ok := leaders[key]
			if !ok {
				leaders[key] = len(out)
				out = append(out, GenreLeader{Genre: g, Movie: m})
				continue
			}
			if out[idx].Movie.Rating.Less(m.Rating) {
				out[idx].Movie = m
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	if out == nil {
		out = []GenreLeader{}
	}
	return out
}

// Point is one row of the rating-versus-votes scatter.
type Point struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
	Votes  int64    `json:"votes"`
	Rating float64  `json:"rating"`
}

// RatingVotePoints returns scatter points for every row with a known rating.
func RatingVotePoints(v View) []Point {
	out := make([]Point, 0, len(v.Rows))
	for _, m := range v.Rows {
		if !m.Rating.Known {
			continue
		}
		out = append(out, Point{
			Title:  m.Title,
			Genres: slices.Clone(m.Genres),
			Votes:  m.Votes,
			Rating: m.Rating.Value,
		})
	}
	return out
}

// ShareSum adds up the share of every group.
func (s VoteShare) ShareSum() float64 {
	var sum float64
	for _, g := range s.Groups {
		sum += g.Share
	}
	return sum
}
