package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/service/source"
	"trendcloud/internal/service/wordcloud"
)

var (
	search  string
	country string
	sortBy  string
)

// aggregateOutput is printed by the aggregate command
type aggregateOutput struct {
	Report  hashtag.Report  `json:"report"`
	Count   int             `json:"count"`
	Entries []hashtag.Entry `json:"entries"`
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate FILE...",
	Short: "Merge hashtag documents into scored entries",
	Long: `Merge one or more hashtag documents into a single deduplicated list of
scored entries, filtered and sorted like the dashboard does.

Examples:
  wordcloud aggregate data/*.json
  wordcloud aggregate us.json my.json --country MY --sort views`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, report, err := aggregateFiles(cmd.Context(), args)
		if err != nil {
			return err
		}

		entries = wordcloud.FilterAndSort(entries, currentQuery())
		return writeJSON(cmd.OutOrStdout(), aggregateOutput{
			Report:  report,
			Count:   len(entries),
			Entries: entries,
		})
	},
}

func init() {
	addQueryFlags(aggregateCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive search over hashtag text and country name")
	cmd.Flags().StringVarP(&country, "country", "c", hashtag.AllCountries, "Country code to keep, or \"all\"")
	cmd.Flags().StringVar(&sortBy, "sort", string(hashtag.SortByRank), "Sort key: rank, views, posts or name")
}

func currentQuery() hashtag.Query {
	return hashtag.Query{
		Search:  search,
		Country: country,
		SortBy:  hashtag.ParseSortBy(sortBy),
	}
}

// aggregateFiles loads the named files and merges them with the configured scoring
func aggregateFiles(ctx context.Context, files []string) ([]hashtag.Entry, hashtag.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := source.NewFileSource(files, log.Named("source.file")).Load(ctx)
	if err != nil {
		return nil, hashtag.Report{}, err
	}

	aggregator := wordcloud.NewAggregator(wordcloud.AggregatorConfig{
		Score: wordcloud.ScoreConfig{
			RankCeiling: cfg.Aggregation.RankCeiling,
			RankFloor:   cfg.Aggregation.RankFloor,
			ViewsWeight: cfg.Aggregation.ViewsWeight,
		},
		TrendPolicy: wordcloud.ParseTrendPolicy(cfg.Aggregation.TrendPolicy),
		MaxCreators: cfg.Aggregation.MaxCreators,
	}, log.Named("aggregator"))

	entries, report := aggregator.AggregateWithReport(docs)
	return entries, report, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
