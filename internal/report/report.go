// Package report renders filter results as aligned plain-text tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"moviedash/internal/filter"
	"moviedash/pkg/models"
)

const (
	minColWidth = 3
	maxTitle    = 40
)

// Table is a header plus rows of already-formatted cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Render writes t as a pipe table padded by display width, so wide runes in
// titles keep the columns aligned.
func (t Table) Render(w io.Writer) error {
	cols := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < len(row) && i < cols; i++ {
			if n := runewidth.StringWidth(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}
	for i := range widths {
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
	}

	var sb strings.Builder
	line := func(row []string) {
		sb.WriteString("|")
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[j]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	line(t.Header)
	sb.WriteString("|")
	for _, n := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", n))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	for _, r := range t.Rows {
		line(r)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatRating(r models.Rating) string {
	if !r.Known {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

func formatDuration(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// Movies lists rows with their normalized fields.
func Movies(rows []models.Movie) Table {
	t := Table{Header: []string{"#", "Title", "Genres", "Rating", "Votes", "Duration"}}
	for i, m := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(m.Title, maxTitle, "..."),
			strings.Join(m.Genres, ", "),
			formatRating(m.Rating),
			strconv.FormatInt(m.Votes, 10),
			formatDuration(m.DurationMinutes),
		})
	}
	return t
}

func GenreCounts(counts []filter.GenreCount) Table {
	t := Table{Header: []string{"Genre", "Movies"}}
	for _, c := range counts {
		t.Rows = append(t.Rows, []string{c.Genre, strconv.Itoa(c.Count)})
	}
	return t
}

func VoteShare(s filter.VoteShare) Table {
	t := Table{Header: []string{"Genre", "Votes", "Share"}}
	for _, g := range s.Groups {
		t.Rows = append(t.Rows, []string{
			g.Genre,
			strconv.FormatInt(g.Votes, 10),
			fmt.Sprintf("%.1f%%", g.Share),
		})
	}
	if len(s.Groups) > 0 {
		t.Rows = append(t.Rows, []string{
			"Total",
			strconv.FormatInt(s.Total, 10),
			fmt.Sprintf("%.1f%%", s.ShareSum()),
		})
	}
	return t
}

func Histogram(h filter.Histogram) Table {
	t := Table{Header: []string{"Rating", "Movies"}}
	for _, b := range h.Bins {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%.1f-%.1f", b.Low, b.High),
			strconv.Itoa(b.Count),
		})
	}
	if h.Unknown > 0 {
		t.Rows = append(t.Rows, []string{"unknown", strconv.Itoa(h.Unknown)})
	}
	return t
}

func Leaders(leaders []filter.GenreLeader) Table {
	t := Table{Header: []string{"Genre", "Title", "Rating"}}
	for _, l := range leaders {
		t.Rows = append(t.Rows, []string{l.Genre, l.Movie.Title, formatRating(l.Movie.Rating)})
	}
	return t
}

// Summary is the headline block for a filtered view.
func Summary(table *models.Table, v filter.View) Table {
	t := Table{Header: []string{"Metric", "Value"}}
	add := func(k, val string) { t.Rows = append(t.Rows, []string{k, val}) }

	add("Source", table.Source)
	add("Loaded rows", strconv.Itoa(table.Len()))
	add("Matching rows", strconv.Itoa(v.Len()))
	add("Degraded fields", strconv.Itoa(table.Degraded.Total()))

	ext := filter.DurationExtremes(v)
	if ext.Found {
		add("Shortest", fmt.Sprintf("%s (%s)", ext.Shortest.Title, formatDuration(ext.Shortest.DurationMinutes)))
		add("Longest", fmt.Sprintf("%s (%s)", ext.Longest.Title, formatDuration(ext.Longest.DurationMinutes)))
	}
	return t
}
