// Package main provides the moviedash command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moviedash/internal/catalog"
	"moviedash/internal/filter"
	"moviedash/internal/logger"
	"moviedash/internal/report"
	"moviedash/internal/source"
	"moviedash/pkg/models"
	"moviedash/pkg/utils"
)

// Exit codes
const (
	ExitSuccess           = 0
	ExitSourceUnavailable = 1
	ExitUsageError        = 2
)

type options struct {
	configPath string
	envFile    string
	kind       string
	path       string
	table      string
	verbose    bool
	quiet      bool

	genres    []string
	duration  string
	minRating float64
	minVotes  int64
	limit     int
	bins      int
}

func main() {
	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, source.ErrSourceUnavailable) {
			os.Exit(ExitSourceUnavailable)
		}
		os.Exit(ExitUsageError)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "moviedash",
		Short: "Filter and summarize a movie dataset",
		Long: `moviedash loads a movie dataset (sqlite or CSV), normalizes vote counts,
ratings, durations and genres, and prints filtered views as tables.

Examples:
  moviedash summary --genres Action --min-rating 8
  moviedash top -n 5 --duration "2–3 hrs"
  moviedash genres --source data/imdb2024.csv --kind csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			cfg := logger.DefaultConfig()
			switch {
			case opts.verbose:
				cfg.Level = "debug"
			case opts.quiet:
				cfg.Level = "error"
			default:
				cfg.Level = "warn"
			}
			logger.Init(cfg)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file")
	pf.StringVar(&opts.envFile, "env", ".env", "dotenv file")
	pf.StringVar(&opts.kind, "kind", "", "source kind (sqlite or csv)")
	pf.StringVar(&opts.path, "source", "", "source path")
	pf.StringVar(&opts.table, "table", "", "sqlite table name")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "errors only")
	pf.StringSliceVar(&opts.genres, "genres", nil, "genres to keep (any match)")
	pf.StringVar(&opts.duration, "duration", "All", `duration bucket: "All", "< 2 hrs", "2–3 hrs", "> 3 hrs"`)
	pf.Float64Var(&opts.minRating, "min-rating", 0, "minimum rating")
	pf.Int64Var(&opts.minVotes, "min-votes", 0, "minimum votes")

	root.AddCommand(
		newSummaryCmd(opts),
		newListCmd(opts),
		newTopCmd(opts),
		newGenresCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show row counts, degradations and duration extremes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, v, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return report.Summary(t, v).Render(cmd.OutOrStdout())
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List matching movies by rating, unrated last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if v.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no movies match the current filters")
				return nil
			}
			rows := filter.SortedByRating(v)
			if opts.limit > 0 && len(rows) > opts.limit {
				rows = rows[:opts.limit]
			}
			return report.Movies(rows).Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum rows (0 lists all)")
	return cmd
}

func newTopCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the best rated movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			ranking := filter.TopN(v, opts.limit)
			if ranking.NoResults {
				fmt.Fprintln(cmd.OutOrStdout(), "no movies match the current filters")
				return nil
			}
			return report.Movies(ranking.Rows).Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", filter.DefaultTopN, "number of movies")
	return cmd
}

func newGenresCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "Show movies and vote share per genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := report.GenreCounts(filter.GenreDistribution(v)).Render(w); err != nil {
				return err
			}
			share := filter.GenreVoteShare(v)
			if share.NoData {
				fmt.Fprintln(w, "\nno vote data for the current filters")
				return nil
			}
			fmt.Fprintln(w)
			return report.VoteShare(share).Render(w)
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the rating histogram and per-genre leaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := report.Histogram(filter.RatingHistogram(v, opts.bins)).Render(w); err != nil {
				return err
			}
			fmt.Fprintln(w)
			return report.Leaders(filter.PerGenreLeader(v)).Render(w)
		},
	}
	cmd.Flags().IntVar(&opts.bins, "bins", filter.DefaultHistogramBins, "histogram bins")
	return cmd
}

func (o *options) predicates() (filter.Predicates, error) {
	bucket, err := filter.ParseDurationBucket(o.duration)
	if err != nil {
		return filter.Predicates{}, err
	}
	return filter.Predicates{
		Genres:    o.genres,
		Duration:  bucket,
		MinRating: o.minRating,
		MinVotes:  o.minVotes,
	}, nil
}

// load reads the configured source and applies the flag predicates.
func (o *options) load(ctx context.Context) (*models.Table, filter.View, error) {
	p, err := o.predicates()
	if err != nil {
		return nil, filter.View{}, err
	}

	if err := utils.LoadEnvFile(o.envFile); err != nil {
		return nil, filter.View{}, err
	}
	cfg, err := utils.LoadConfig(o.configPath)
	if err != nil {
		return nil, filter.View{}, err
	}
	kind, path, table := cfg.Source.Kind, cfg.Source.Path, cfg.Source.Table
	if o.kind != "" {
		kind = strings.ToLower(o.kind)
	}
	if o.path != "" {
		path = o.path
		if o.kind == "" && strings.HasSuffix(strings.ToLower(path), ".csv") {
			kind = "csv"
		}
	}
	if o.table != "" {
		table = o.table
	}

	src, err := source.New(kind, path, table)
	if err != nil {
		return nil, filter.View{}, err
	}
	cat, err := catalog.New(1)
	if err != nil {
		return nil, filter.View{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	t, err := cat.Load(ctx, src)
	if err != nil {
		return nil, filter.View{}, err
	}
	return t, filter.Apply(t, p), nil
}
