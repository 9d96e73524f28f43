package hashtag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestTrendFromCode(t *testing.T) {
	testCases := []struct {
		name     string
		code     *int
		expected Trend
	}{
		{"nil", nil, TrendStable},
		{"up", intPtr(1), TrendUp},
		{"stable", intPtr(2), TrendStable},
		{"down", intPtr(3), TrendDown},
		{"unknown", intPtr(7), TrendStable},
		{"zero", intPtr(0), TrendStable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TrendFromCode(tc.code))
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	empty := Record{Name: "bare"}
	assert.Equal(t, 5, empty.Rank(5))
	assert.Zero(t, empty.Views())
	assert.Zero(t, empty.Posts())
	assert.Equal(t, TrendStable, empty.Trend())
	assert.Nil(t, empty.Creators())
	assert.Nil(t, empty.History())

	full := Record{
		Name: "full",
		AdditionalData: &AdditionalData{
			Rank:         intPtr(3),
			VideoViews:   int64Ptr(1000),
			PublishCnt:   int64Ptr(20),
			RankDiffType: intPtr(3),
			Creators:     []Creator{{NickName: "a"}},
			Trend:        []TrendPoint{{Time: 1, Value: 0.5}},
		},
	}
	assert.Equal(t, 3, full.Rank(5))
	assert.Equal(t, int64(1000), full.Views())
	assert.Equal(t, int64(20), full.Posts())
	assert.Equal(t, TrendDown, full.Trend())
	assert.Len(t, full.Creators(), 1)
	assert.Len(t, full.History(), 1)

	invalid := Record{AdditionalData: &AdditionalData{Rank: intPtr(0), VideoViews: int64Ptr(-4)}}
	assert.Equal(t, 9, invalid.Rank(9), "non-positive rank uses the fallback")
	assert.Zero(t, invalid.Views())
}

func TestParseSortBy(t *testing.T) {
	testCases := []struct {
		input    string
		expected SortBy
	}{
		{"rank", SortByRank},
		{"views", SortByViews},
		{"VIEWS", SortByViews},
		{" posts ", SortByPosts},
		{"name", SortByName},
		{"", SortByRank},
		{"popularity", SortByRank},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseSortBy(tc.input))
		})
	}
}

func TestCountryName(t *testing.T) {
	testCases := []struct {
		code     string
		expected string
	}{
		{"MY", "Malaysia"},
		{"us", "United States"},
		{"", ""},
		{"not-a-region", "NOT-A-REGION"},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.expected, CountryName(tc.code))
		})
	}
}

func TestValidDimension(t *testing.T) {
	testCases := []struct {
		name     string
		value    float64
		expected bool
	}{
		{"positive", 800, true},
		{"fraction", 0.5, true},
		{"zero", 0, false},
		{"negative", -10, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidDimension(tc.value))
		})
	}
}
