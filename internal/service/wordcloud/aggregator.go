// internal/service/wordcloud/aggregator.go

package wordcloud

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
)

// TrendPolicy decides which contributing record sets an entry's trend
type TrendPolicy string

const (
	// TrendFromBestRank keeps the trend of the best-ranked contributing record
	TrendFromBestRank TrendPolicy = "best_rank"
	// TrendLastWrite keeps the trend of the last merged record, as the
	// upstream dashboards did
	TrendLastWrite TrendPolicy = "last_write"
)

// ParseTrendPolicy parses a policy name, defaulting to TrendFromBestRank
func ParseTrendPolicy(s string) TrendPolicy {
	if TrendPolicy(strings.ToLower(strings.TrimSpace(s))) == TrendLastWrite {
		return TrendLastWrite
	}
	return TrendFromBestRank
}

// AggregatorConfig contains configuration for the aggregator
type AggregatorConfig struct {
	Score       ScoreConfig
	TrendPolicy TrendPolicy
	MaxCreators int
}

// DefaultAggregatorConfig returns the default aggregator configuration
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		Score:       DefaultScoreConfig(),
		TrendPolicy: TrendFromBestRank,
		MaxCreators: 10,
	}
}

// Aggregator merges per-country hashtag records into ranked entries.
// It holds no state between calls.
type Aggregator struct {
	config AggregatorConfig
	log    *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(config AggregatorConfig, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if config.Score == (ScoreConfig{}) {
		config.Score = DefaultScoreConfig()
	}
	if config.MaxCreators <= 0 {
		config.MaxCreators = DefaultAggregatorConfig().MaxCreators
	}
	if config.TrendPolicy == "" {
		config.TrendPolicy = TrendFromBestRank
	}
	return &Aggregator{
		config: config,
		log:    log,
	}
}

// accumulator tracks an entry while records are merged into it
type accumulator struct {
	entry       hashtag.Entry
	bestRank    int
	creatorSeen map[string]struct{}
	countries   map[string]struct{}
}

// Aggregate merges all sources into a deduplicated, ranked list
func (a *Aggregator) Aggregate(sources []hashtag.Document) []hashtag.Entry {
	entries, _ := a.AggregateWithReport(sources)
	return entries
}

// AggregateWithReport merges all sources and reports what was skipped
func (a *Aggregator) AggregateWithReport(sources []hashtag.Document) ([]hashtag.Entry, hashtag.Report) {
	report := hashtag.Report{Sources: len(sources)}
	merged := make(map[string]*accumulator)

	for _, doc := range sources {
		if doc.Countries == nil {
			report.SkippedSources++
			a.log.Warn("Skipping source without countries section", zap.String("source", doc.Source))
			continue
		}

		// Map order is random; walk countries in code order so merges are repeatable
		codes := make([]string, 0, len(doc.Countries))
		for code := range doc.Countries {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			country := doc.Countries[code]
			if country == nil {
				report.SkippedSections++
				a.log.Warn("Skipping malformed country section",
					zap.String("source", doc.Source),
					zap.String("country", code),
				)
				continue
			}
			report.Countries++

			for i, rec := range country.Hashtags {
				report.Records++

				text := normalizeText(rec)
				if text == "" {
					report.DroppedRecords++
					a.log.Debug("Dropping hashtag record without name",
						zap.String("source", doc.Source),
						zap.String("country", code),
						zap.Int("position", i+1),
					)
					continue
				}

				a.merge(merged, text, code, *rec, i+1)
			}
		}
	}

	entries := make([]hashtag.Entry, 0, len(merged))
	for _, acc := range merged {
		acc.entry.Countries = sortedKeys(acc.countries)
		entries = append(entries, acc.entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessByRank(&entries[i], &entries[j])
	})

	report.Entries = len(entries)
	if report.DroppedRecords > 0 || report.SkippedSections > 0 || report.SkippedSources > 0 {
		a.log.Info("Aggregated hashtags with skipped input",
			zap.Int("entries", report.Entries),
			zap.Int("dropped_records", report.DroppedRecords),
			zap.Int("skipped_sections", report.SkippedSections),
			zap.Int("skipped_sources", report.SkippedSources),
		)
	}

	return entries, report
}

// merge folds one record into the accumulated entry for its text
func (a *Aggregator) merge(merged map[string]*accumulator, text, country string, rec hashtag.Record, position int) {
	rank := rec.Rank(position)
	views := rec.Views()
	posts := rec.Posts()
	score := a.config.Score.Score(rank, views)
	trend := rec.Trend()

	acc, exists := merged[text]
	if !exists {
		acc = &accumulator{
			entry: hashtag.Entry{
				Text:       text,
				Score:      score,
				Country:    country,
				Rank:       rank,
				Trend:      trend,
				TotalViews: views,
				TotalPosts: posts,
				History:    rec.History(),
			},
			bestRank:    rank,
			creatorSeen: make(map[string]struct{}),
			countries:   map[string]struct{}{country: {}},
		}
		a.addCreators(acc, rec.Creators())
		merged[text] = acc
		return
	}

	e := &acc.entry
	e.TotalViews += views
	e.TotalPosts += posts
	if score > e.Score {
		e.Score = score
	}
	if rank < e.Rank {
		e.Rank = rank
	}

	// Ties keep the record merged first
	betterRank := rank < acc.bestRank
	if betterRank {
		acc.bestRank = rank
		e.Country = country
		e.History = rec.History()
	}

	switch a.config.TrendPolicy {
	case TrendLastWrite:
		e.Trend = trend
	default:
		if betterRank {
			e.Trend = trend
		}
	}

	acc.countries[country] = struct{}{}
	a.addCreators(acc, rec.Creators())
}

// addCreators appends creators until the cap, skipping repeated names
func (a *Aggregator) addCreators(acc *accumulator, creators []hashtag.Creator) {
	for _, c := range creators {
		if len(acc.entry.Creators) >= a.config.MaxCreators {
			return
		}
		name := strings.TrimSpace(c.NickName)
		if name == "" {
			continue
		}
		if _, seen := acc.creatorSeen[name]; seen {
			continue
		}
		acc.creatorSeen[name] = struct{}{}
		acc.entry.Creators = append(acc.entry.Creators, hashtag.Creator{
			NickName:  name,
			AvatarURL: c.AvatarURL,
		})
	}
}

func normalizeText(rec *hashtag.Record) string {
	if rec == nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(rec.Name), "#")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
