// Package movies exposes filtered movie views over HTTP.
package movies

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"moviedash/internal/filter"
	"moviedash/internal/logger"
	"moviedash/internal/source"
)

type Handler struct {
	Repo *Repo
	TopN int
	Bins int
}

func NewHandler(repo *Repo, topN, bins int) *Handler {
	return &Handler{Repo: repo, TopN: topN, Bins: bins}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                      // GET /movies
	rg.GET("/genres", h.genres)             // GET /movies/genres
	rg.GET("/top", h.top)                   // GET /movies/top?n=10
	rg.GET("/stats/genres", h.genreCounts)  // GET /movies/stats/genres
	rg.GET("/stats/votes", h.voteShare)     // GET /movies/stats/votes
	rg.GET("/stats/ratings", h.ratings)     // GET /movies/stats/ratings?bins=20
	rg.GET("/stats/durations", h.durations) // GET /movies/stats/durations
	rg.GET("/stats/leaders", h.leaders)     // GET /movies/stats/leaders
	rg.GET("/stats/scatter", h.scatter)     // GET /movies/stats/scatter
	rg.GET("/:id", h.getByID)               // GET /movies/:id
	rg.POST("/reload", h.reload)            // POST /movies/reload
}

func (h *Handler) list(c *gin.Context) {
	p, ok := h.predicates(c)
	if !ok {
		return
	}
	q := ListQuery{
		Q:          c.Query("q"),
		Sort:       c.Query("sort"),
		Predicates: p,
		Limit:      parseInt(c.Query("limit"), defaultLimit),
		Offset:     parseInt(c.Query("offset"), 0),
	}

	total, items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, "list failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"empty":  total == 0,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	m, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get failed", err)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) genres(c *gin.Context) {
	t, err := h.Repo.Table(c.Request.Context())
	if err != nil {
		writeError(c, "load failed", err)
		return
	}
	buckets := make([]string, 0, len(filter.Buckets))
	for _, b := range filter.Buckets {
		buckets = append(buckets, string(b))
	}
	c.JSON(http.StatusOK, gin.H{
		"genres":    t.Genres(),
		"durations": buckets,
	})
}

func (h *Handler) top(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, filter.TopN(v, parseInt(c.Query("n"), h.TopN)))
}

func (h *Handler) genreCounts(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": filter.GenreDistribution(v), "empty": v.Empty()})
}

func (h *Handler) voteShare(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, filter.GenreVoteShare(v))
}

func (h *Handler) ratings(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	bins := parseInt(c.Query("bins"), h.Bins)
	if bins > 100 {
		bins = 100
	}
	c.JSON(http.StatusOK, filter.RatingHistogram(v, bins))
}

func (h *Handler) durations(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, filter.DurationExtremes(v))
}

func (h *Handler) leaders(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaders": filter.PerGenreLeader(v)})
}

func (h *Handler) scatter(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": filter.RatingVotePoints(v)})
}

func (h *Handler) reload(c *gin.Context) {
	t, err := h.Repo.Reload(c.Request.Context())
	if err != nil {
		writeError(c, "reload failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"load_id":   t.LoadID,
		"source":    t.Source,
		"rows":      t.Len(),
		"degraded":  t.Degraded,
		"loaded_at": t.LoadedAt,
	})
}

// view parses the predicates of the request and evaluates them, writing the
// error response itself when either step fails.
func (h *Handler) view(c *gin.Context) (filter.View, bool) {
	p, ok := h.predicates(c)
	if !ok {
		return filter.View{}, false
	}
	v, err := h.Repo.View(c.Request.Context(), p)
	if err != nil {
		writeError(c, "load failed", err)
		return filter.View{}, false
	}
	return v, true
}

func (h *Handler) predicates(c *gin.Context) (filter.Predicates, bool) {
	p, err := parsePredicates(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return filter.Predicates{}, false
	}
	return p, true
}

func parsePredicates(c *gin.Context) (filter.Predicates, error) {
	var p filter.Predicates

	// genres=Action,Drama OR genres=Action&genres=Drama
	for _, g := range c.QueryArray("genres") {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				p.Genres = append(p.Genres, part)
			}
		}
	}

	bucket, err := filter.ParseDurationBucket(c.Query("duration"))
	if err != nil {
		return p, err
	}
	p.Duration = bucket

	if s := strings.TrimSpace(c.Query("min_rating")); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("invalid min_rating %q", s)
		}
		p.MinRating = f
	}
	if s := strings.TrimSpace(c.Query("min_votes")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid min_votes %q", s)
		}
		p.MinVotes = n
	}
	return p, nil
}

func writeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, source.ErrSourceUnavailable) {
		logger.Warn(msg, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "source unavailable"})
		return
	}
	logger.Error(msg, "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
