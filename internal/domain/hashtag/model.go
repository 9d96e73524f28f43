package hashtag

import (
	"math"
	"time"
)

// Trend is the direction a hashtag moved in its country ranking
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Rank diff codes used by the upstream trend feed
const (
	rankDiffUp   = 1
	rankDiffDown = 3
)

// TrendFromCode maps a raw rank_diff_type code to a Trend
func TrendFromCode(code *int) Trend {
	if code == nil {
		return TrendStable
	}
	switch *code {
	case rankDiffUp:
		return TrendUp
	case rankDiffDown:
		return TrendDown
	default:
		return TrendStable
	}
}

// Creator is a creator associated with a hashtag
type Creator struct {
	NickName  string `json:"nick_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TrendPoint is one sample of a hashtag's historical series
type TrendPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// AdditionalData holds the optional metrics of a raw record
type AdditionalData struct {
	Rank         *int         `json:"rank,omitempty"`
	VideoViews   *int64       `json:"video_views,omitempty"`
	PublishCnt   *int64       `json:"publish_cnt,omitempty"`
	RankDiffType *int         `json:"rank_diff_type,omitempty"`
	Trend        []TrendPoint `json:"trend,omitempty"`
	Creators     []Creator    `json:"creators,omitempty"`
}

// Record is one country's observation of a hashtag
type Record struct {
	Name           string          `json:"hashtag_name"`
	ID             string          `json:"hashtag_id,omitempty"`
	AdditionalData *AdditionalData `json:"additional_data,omitempty"`
}

// Rank returns the record rank, or fallback when the record has none
func (r Record) Rank(fallback int) int {
	if r.AdditionalData != nil && r.AdditionalData.Rank != nil && *r.AdditionalData.Rank > 0 {
		return *r.AdditionalData.Rank
	}
	return fallback
}

// Views returns the record view count, zero when absent
func (r Record) Views() int64 {
	if r.AdditionalData == nil || r.AdditionalData.VideoViews == nil || *r.AdditionalData.VideoViews < 0 {
		return 0
	}
	return *r.AdditionalData.VideoViews
}

// Posts returns the record post count, zero when absent
func (r Record) Posts() int64 {
	if r.AdditionalData == nil || r.AdditionalData.PublishCnt == nil || *r.AdditionalData.PublishCnt < 0 {
		return 0
	}
	return *r.AdditionalData.PublishCnt
}

// Trend returns the classified trend of the record
func (r Record) Trend() Trend {
	if r.AdditionalData == nil {
		return TrendStable
	}
	return TrendFromCode(r.AdditionalData.RankDiffType)
}

// Creators returns the creators attached to the record
func (r Record) Creators() []Creator {
	if r.AdditionalData == nil {
		return nil
	}
	return r.AdditionalData.Creators
}

// History returns the historical series attached to the record
func (r Record) History() []TrendPoint {
	if r.AdditionalData == nil {
		return nil
	}
	return r.AdditionalData.Trend
}

// Entry is a hashtag aggregated across countries and sources
type Entry struct {
	Text       string       `json:"text"`
	Score      float64      `json:"score"`
	Country    string       `json:"country"`
	Rank       int          `json:"rank"`
	Trend      Trend        `json:"trend"`
	TotalViews int64        `json:"totalViews"`
	TotalPosts int64        `json:"totalPosts"`
	Creators   []Creator    `json:"creators,omitempty"`
	Countries  []string     `json:"countries,omitempty"`
	History    []TrendPoint `json:"history,omitempty"`
}

// PositionedEntry is an entry with its word cloud placement
type PositionedEntry struct {
	Entry
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Placed   bool    `json:"placed"`
}

// Canvas is the drawing surface for a layout
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ValidDimension reports whether v can be used as a canvas width or height
func ValidDimension(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Snapshot is the result of one aggregation pass over all sources
type Snapshot struct {
	ID          string    `json:"id"`
	Generation  uint64    `json:"generation"`
	GeneratedAt time.Time `json:"generatedAt"`
	Entries     []Entry   `json:"entries"`
	Report      Report    `json:"report"`
}

// Report counts what an aggregation pass kept and skipped
type Report struct {
	Sources         int `json:"sources"`
	SkippedSources  int `json:"skippedSources"`
	Countries       int `json:"countries"`
	SkippedSections int `json:"skippedSections"`
	Records         int `json:"records"`
	DroppedRecords  int `json:"droppedRecords"`
	Entries         int `json:"entries"`
}
