package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"moviedash/internal/logger"
	"moviedash/pkg/database"
)

// columns are the movies table columns in insert order.
var columns = []string{"title", "genre", "rating", "votes", "duration"}

func main() {
	var (
		in       = flag.String("in", "data/imdb2024.csv", "input CSV path")
		dbPath   = flag.String("db", database.DefaultConfig().Path, "sqlite database path")
		truncate = flag.Bool("truncate", true, "delete existing rows before import")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.MustOpen(database.Config{Path: *dbPath})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", "err", err)
	}

	n, err := importMovies(ctx, db, *in, *truncate)
	if err != nil {
		logger.Fatal("import movies failed", "in", *in, "err", err)
	}

	logger.Info("imported movies", "rows", n, "in", *in, "db", *dbPath)
}

// importMovies copies the raw text of every CSV row into the movies table.
// Values are stored as-is; normalization happens when the table is read.
func importMovies(ctx context.Context, db *sql.DB, path string, truncate bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if _, ok := header["title"]; !ok {
		return 0, errors.New("csv has no title column")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if truncate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
			return 0, fmt.Errorf("truncate: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (Title, Genre, Rating, Votes, Duration)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 0 {
			continue
		}

		title := valueAt(header, row, "title")
		if title == "" {
			continue
		}

		args := make([]any, 0, len(columns))
		args = append(args, title)
		for _, col := range columns[1:] {
			args = append(args, nullString(valueAt(header, row, col)))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return count, fmt.Errorf("insert line %d: %w", line, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, err
	}
	return count, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\uFEFF")
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
