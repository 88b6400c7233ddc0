package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"moviedash/pkg/models"
)

// CSV reads a header-first CSV file of movie rows.
type CSV struct {
	Path string

	fp fingerprinter
}

func NewCSV(path string) *CSV {
	return &CSV{Path: path}
}

func (c *CSV) Identity() string {
	p := c.Path
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return "csv:" + p
}

func (c *CSV) Fingerprint(_ context.Context) (string, error) {
	sum, err := c.fp.fingerprint(c.Path)
	if err != nil {
		return "", unavailable(c.Identity(), "fingerprint", err)
	}
	return sum, nil
}

func (c *CSV) Records(ctx context.Context) ([]models.RawRecord, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, unavailable(c.Identity(), "open", err)
	}
	defer f.Close()

	recs, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, unavailable(c.Identity(), "read", err)
	}
	return recs, nil
}

// ReadCSV parses header-first CSV into raw records. Short rows leave their
// missing columns out of the record; blank lines are skipped.
func ReadCSV(ctx context.Context, r io.Reader) ([]models.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	var out []models.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		rec := make(models.RawRecord, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			rec[name] = row[i]
		}
		out = append(out, rec)
	}
	return out, nil
}
