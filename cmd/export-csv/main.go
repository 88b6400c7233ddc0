package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"moviedash/internal/catalog"
	"moviedash/internal/filter"
	"moviedash/internal/logger"
	"moviedash/internal/source"
	"moviedash/pkg/models"
	"moviedash/pkg/utils"
)

var exportHeader = []string{"id", "title", "genres", "rating", "votes", "duration_minutes"}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		envFile    = flag.String("env", ".env", "dotenv file")
		out        = flag.String("out", "data/movies_clean.csv", "output CSV path")
		genres     = flag.String("genres", "", "comma-separated genres to keep")
		duration   = flag.String("duration", "All", "duration bucket")
		minRating  = flag.Float64("min-rating", 0, "minimum rating")
		minVotes   = flag.Int64("min-votes", 0, "minimum votes")
	)
	flag.Parse()

	if err := utils.LoadEnvFile(*envFile); err != nil {
		logger.Fatal("env file", "err", err)
	}
	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("config", "err", err)
	}

	bucket, err := filter.ParseDurationBucket(*duration)
	if err != nil {
		logger.Fatal("bad duration", "err", err)
	}
	p := filter.Predicates{Duration: bucket, MinRating: *minRating, MinVotes: *minVotes}
	if *genres != "" {
		p.Genres = strings.Split(*genres, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	src, err := source.New(cfg.Source.Kind, cfg.Source.Path, cfg.Source.Table)
	if err != nil {
		logger.Fatal("source", "err", err)
	}
	cat, err := catalog.New(1)
	if err != nil {
		logger.Fatal("catalog", "err", err)
	}
	table, err := cat.Load(ctx, src)
	if err != nil {
		logger.Fatal("load failed", "err", err)
	}

	v := filter.Apply(table, p)
	if err := exportMovies(*out, v.Rows); err != nil {
		logger.Fatal("export movies failed", "out", *out, "err", err)
	}

	logger.Info("exported movies", "rows", v.Len(), "of", table.Len(), "out", *out)
}

func exportMovies(outPath string, rows []models.Movie) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeMovies(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// writeMovies writes canonical rows; an unknown rating is an empty cell.
func writeMovies(dst io.Writer, rows []models.Movie) error {
	w := csv.NewWriter(dst)
	if err := w.Write(exportHeader); err != nil {
		return err
	}

	for _, m := range rows {
		rating := ""
		if m.Rating.Known {
			rating = strconv.FormatFloat(m.Rating.Value, 'f', -1, 64)
		}
		if err := w.Write([]string{
			m.ID,
			m.Title,
			strings.Join(m.Genres, ", "),
			rating,
			strconv.FormatInt(m.Votes, 10),
			strconv.Itoa(m.DurationMinutes),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
