package wordcloud

import (
	"math"
	"strings"

	"trendcloud/internal/domain/hashtag"
)

// ScoreConfig tunes how a raw record is turned into a popularity score
type ScoreConfig struct {
	// RankCeiling is K in max(K - rank, floor)
	RankCeiling float64
	RankFloor   float64
	ViewsWeight float64
}

// DefaultScoreConfig returns the scoring constants used by the dashboards
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		RankCeiling: 100,
		RankFloor:   10,
		ViewsWeight: 5,
	}
}

// Score computes max(K - rank, floor) + log10(views + 1) * weight
func (c ScoreConfig) Score(rank int, views int64) float64 {
	rankComponent := math.Max(c.RankCeiling-float64(rank), c.RankFloor)
	if views < 0 {
		views = 0
	}
	viewsComponent := math.Log10(float64(views)+1) * c.ViewsWeight
	return rankComponent + viewsComponent
}

// lessByRank orders entries by rank asc, score desc, then text
func lessByRank(a, b *hashtag.Entry) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return strings.Compare(a.Text, b.Text) < 0
}
