package movies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviedash/internal/catalog"
	"moviedash/internal/filter"
	"moviedash/internal/source"
	"moviedash/pkg/models"
)

const moviesCSV = `Title,Genre,Rating,Votes,Duration
A,Action,8.5,"1,000",2h 0m
B,Drama,7.0,500,1h 30m
C,Action,9.0,"2,000",3h 10m
`

func setupRouter(t *testing.T, path string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.New(2)
	require.NoError(t, err)

	r := gin.New()
	NewHandler(NewRepo(cat, source.NewCSV(path)), filter.DefaultTopN, filter.DefaultHistogramBins).
		RegisterRoutes(r.Group("/movies"))
	return r
}

func seedCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(moviesCSV), 0o644))
	return path
}

func doGet(t *testing.T, r http.Handler, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestList_Filters(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body struct {
		Total int            `json:"total"`
		Empty bool           `json:"empty"`
		Items []models.Movie `json:"items"`
	}
	rec := doGet(t, r, "/movies?genres=action&min_rating=8", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "A", body.Items[0].Title)
	assert.Equal(t, "C", body.Items[1].Title)
}

func TestList_DurationAndVotes(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body struct {
		Total int            `json:"total"`
		Items []models.Movie `json:"items"`
	}
	target := "/movies?duration=" + url.QueryEscape("2–3 hrs") + "&min_votes=1000"
	rec := doGet(t, r, target, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "A", body.Items[0].Title)
	assert.Equal(t, 120, body.Items[0].DurationMinutes)
}

func TestList_EmptyResult(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body struct {
		Total int            `json:"total"`
		Empty bool           `json:"empty"`
		Items []models.Movie `json:"items"`
	}
	rec := doGet(t, r, "/movies?genres=Western", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Empty)
	assert.Empty(t, body.Items)
}

func TestList_BadPredicate(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	assert.Equal(t, http.StatusBadRequest, doGet(t, r, "/movies?duration=forever", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, r, "/movies?min_rating=high", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, r, "/movies?min_votes=1.5", nil).Code)
}

func TestTop(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body filter.Ranking
	rec := doGet(t, r, "/movies/top?genres=Action&min_rating=8&n=2", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "C", body.Rows[0].Title)
	assert.Equal(t, "A", body.Rows[1].Title)
	assert.False(t, body.NoResults)
}

func TestVoteShare(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body filter.VoteShare
	rec := doGet(t, r, "/movies/stats/votes?genres=Action&min_rating=8", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Groups, 1)
	assert.Equal(t, int64(3000), body.Groups[0].Votes)
	assert.InDelta(t, 100.0, body.Groups[0].Share, 1e-9)
}

func TestStats(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var hist filter.Histogram
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/stats/ratings?bins=10", &hist).Code)
	assert.Len(t, hist.Bins, 10)

	var ext filter.Extremes
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/stats/durations", &ext).Code)
	assert.True(t, ext.Found)
	assert.Equal(t, "B", ext.Shortest.Title)
	assert.Equal(t, "C", ext.Longest.Title)

	var leaders struct {
		Leaders []filter.GenreLeader `json:"leaders"`
	}
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/stats/leaders", &leaders).Code)
	require.Len(t, leaders.Leaders, 2)
	assert.Equal(t, "Action", leaders.Leaders[0].Genre)
	assert.Equal(t, "C", leaders.Leaders[0].Movie.Title)

	var genres struct {
		Genres []filter.GenreCount `json:"genres"`
	}
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/stats/genres", &genres).Code)
	assert.Equal(t, []filter.GenreCount{{Genre: "Action", Count: 2}, {Genre: "Drama", Count: 1}}, genres.Genres)

	var scatter struct {
		Points []filter.Point `json:"points"`
	}
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/stats/scatter", &scatter).Code)
	assert.Len(t, scatter.Points, 3)
}

func TestGenres(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body struct {
		Genres    []string `json:"genres"`
		Durations []string `json:"durations"`
	}
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/genres", &body).Code)
	assert.Equal(t, []string{"Action", "Drama"}, body.Genres)
	assert.Equal(t, []string{"All", "< 2 hrs", "2–3 hrs", "> 3 hrs"}, body.Durations)
}

func TestGetByID(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var list struct {
		Items []models.Movie `json:"items"`
	}
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies", &list).Code)
	require.NotEmpty(t, list.Items)

	var m models.Movie
	require.Equal(t, http.StatusOK, doGet(t, r, "/movies/"+list.Items[0].ID, &m).Code)
	assert.Equal(t, list.Items[0].Title, m.Title)

	assert.Equal(t, http.StatusNotFound, doGet(t, r, "/movies/nope", nil).Code)
}

func TestReload(t *testing.T) {
	path := seedCSV(t)
	r := setupRouter(t, path)

	req := httptest.NewRequest(http.MethodPost, "/movies/reload", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LoadID string `json:"load_id"`
		Rows   int    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.LoadID)
	assert.Equal(t, 3, body.Rows)
}

func TestSourceUnavailable(t *testing.T) {
	r := setupRouter(t, filepath.Join(t.TempDir(), "missing.csv"))

	rec := doGet(t, r, "/movies", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "source unavailable")

	rec = doGet(t, r, "/movies/stats/votes", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestList_SortByRating(t *testing.T) {
	r := setupRouter(t, seedCSV(t))

	var body struct {
		Items []models.Movie `json:"items"`
	}
	rec := doGet(t, r, "/movies?sort=rating", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Items, 3)
	assert.Equal(t, "C", body.Items[0].Title)
	assert.Equal(t, "A", body.Items[1].Title)
	assert.Equal(t, "B", body.Items[2].Title)
}

func TestRepo_DropsTableWhenSourceVanishes(t *testing.T) {
	path := seedCSV(t)
	cat, err := catalog.New(2)
	require.NoError(t, err)
	src := source.NewCSV(path)
	repo := NewRepo(cat, src)

	_, err = repo.Table(context.Background())
	require.NoError(t, err)
	_, ok := cat.Cached(src.Identity())
	require.True(t, ok)

	require.NoError(t, os.Remove(path))
	_, err = repo.Table(context.Background())
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
	_, ok = cat.Cached(src.Identity())
	assert.False(t, ok)
}

func TestGetByID_ReturnsDetachedCopy(t *testing.T) {
	path := seedCSV(t)
	cat, err := catalog.New(2)
	require.NoError(t, err)
	repo := NewRepo(cat, source.NewCSV(path))

	table, err := repo.Table(context.Background())
	require.NoError(t, err)
	id := table.Movies[0].ID

	m, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	m.Genres[0] = "Mutated"

	assert.Equal(t, []string{"Action"}, table.Movies[0].Genres)
}
