package wordcloud

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcloud/internal/domain/hashtag"
)

func rankedEntries(n int) []hashtag.Entry {
	entries := make([]hashtag.Entry, n)
	for i := range entries {
		entries[i] = hashtag.Entry{
			Text:       fmt.Sprintf("hashtag%d", i+1),
			Rank:       i + 1,
			Score:      float64(100 - i),
			TotalViews: int64((n - i) * 1000),
			TotalPosts: int64(n - i),
		}
	}
	return entries
}

func assertNoOverlap(t *testing.T, entries []hashtag.PositionedEntry) {
	t.Helper()
	for i := 0; i < len(entries); i++ {
		if !entries[i].Placed {
			continue
		}
		a := boxAt(entries[i].X, entries[i].Y, entries[i].Width, entries[i].Height)
		for j := i + 1; j < len(entries); j++ {
			if !entries[j].Placed {
				continue
			}
			b := boxAt(entries[j].X, entries[j].Y, entries[j].Width, entries[j].Height)
			assert.False(t, a.overlaps(b, 0), "%q overlaps %q", entries[i].Text, entries[j].Text)
		}
	}
}

func assertContained(t *testing.T, entries []hashtag.PositionedEntry, canvas hashtag.Canvas, pad float64) {
	t.Helper()
	for _, pe := range entries {
		if !pe.Placed {
			continue
		}
		box := boxAt(pe.X, pe.Y, pe.Width, pe.Height)
		assert.GreaterOrEqual(t, box.minX, pad, "%q left edge", pe.Text)
		assert.GreaterOrEqual(t, box.minY, pad, "%q top edge", pe.Text)
		assert.LessOrEqual(t, box.maxX, canvas.Width-pad, "%q right edge", pe.Text)
		assert.LessOrEqual(t, box.maxY, canvas.Height-pad, "%q bottom edge", pe.Text)
	}
}

func TestLayoutPlacesWithoutOverlap(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())
	canvas := hashtag.Canvas{Width: 1000, Height: 600}

	for _, by := range []hashtag.SortBy{hashtag.SortByRank, hashtag.SortByViews, hashtag.SortByPosts, hashtag.SortByName} {
		t.Run(string(by), func(t *testing.T) {
			page := engine.LayoutPage(rankedEntries(60), canvas, by, 0)

			require.Len(t, page.Entries, 60)
			assert.Equal(t, 60, page.Placed+page.Fallback)
			assert.Positive(t, page.Placed)
			assertNoOverlap(t, page.Entries)
			assertContained(t, page.Entries, canvas, engine.Config().Padding)
		})
	}
}

func TestLayoutKeepsInputOrder(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())
	entries := rankedEntries(10)
	// Reverse so processing order differs from output order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	page := engine.LayoutPage(entries, hashtag.Canvas{Width: 800, Height: 600}, hashtag.SortByRank, 0)
	require.Len(t, page.Entries, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Text, page.Entries[i].Text)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())
	canvas := hashtag.Canvas{Width: 900, Height: 500}

	first := engine.LayoutPage(rankedEntries(40), canvas, hashtag.SortByViews, 0)
	second := engine.LayoutPage(rankedEntries(40), canvas, hashtag.SortByViews, 0)
	assert.Equal(t, first, second)
}

func TestLayoutBestRankAtCentre(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())
	canvas := hashtag.Canvas{Width: 1000, Height: 600}

	page := engine.LayoutPage(rankedEntries(5), canvas, hashtag.SortByRank, 0)
	require.True(t, page.Entries[0].Placed)
	assert.Equal(t, 500.0, page.Entries[0].X)
	assert.Equal(t, 300.0, page.Entries[0].Y)
}

func TestLayoutFontSizeMonotonic(t *testing.T) {
	config := DefaultLayoutConfig()
	engine := NewLayoutEngine(config)
	canvas := hashtag.Canvas{Width: 1200, Height: 800}

	testCases := []struct {
		by hashtag.SortBy
	}{
		{hashtag.SortByRank},
		{hashtag.SortByViews},
		{hashtag.SortByPosts},
	}

	for _, tc := range testCases {
		t.Run(string(tc.by), func(t *testing.T) {
			page := engine.LayoutPage(rankedEntries(20), canvas, tc.by, 0)
			for i := 1; i < len(page.Entries); i++ {
				assert.GreaterOrEqual(t, page.Entries[i-1].FontSize, page.Entries[i].FontSize)
			}
			assert.Equal(t, config.MaxFont, page.Entries[0].FontSize)
			for _, pe := range page.Entries {
				assert.GreaterOrEqual(t, pe.FontSize, config.MinFont)
				assert.LessOrEqual(t, pe.FontSize, config.MaxFont)
			}
		})
	}
}

func TestLayoutFallsBackToGrid(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())
	canvas := hashtag.Canvas{Width: 100, Height: 60}

	entries := make([]hashtag.Entry, 12)
	for i := range entries {
		entries[i] = hashtag.Entry{Text: fmt.Sprintf("averyveryverylonghashtag%d", i), Rank: i + 1}
	}

	page := engine.LayoutPage(entries, canvas, hashtag.SortByRank, 0)

	require.Len(t, page.Entries, len(entries), "fallback never drops entries")
	assert.Equal(t, 0, page.Placed)
	assert.Equal(t, len(entries), page.Fallback)
	for _, pe := range page.Entries {
		assert.False(t, pe.Placed)
		assert.Equal(t, engine.Config().MinFont, pe.FontSize, "oversized labels shrink to the minimum font")
	}
}

func TestLayoutPagination(t *testing.T) {
	config := DefaultLayoutConfig()
	config.PageSize = 10
	engine := NewLayoutEngine(config)
	canvas := hashtag.Canvas{Width: 1000, Height: 600}
	entries := rankedEntries(25)

	assert.Equal(t, 3, engine.PageCount(len(entries)))
	assert.Equal(t, 0, engine.PageCount(0))

	pages := engine.Layout(entries, canvas, hashtag.SortByRank)
	require.Len(t, pages, 3)

	sizes := []int{10, 10, 5}
	for i, p := range pages {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 3, p.Total)
		assert.Len(t, p.Entries, sizes[i])
		assertNoOverlap(t, p.Entries)
	}
	assert.Equal(t, "hashtag21", pages[2].Entries[0].Text)

	past := engine.LayoutPage(entries, canvas, hashtag.SortByRank, 3)
	assert.Empty(t, past.Entries)
	assert.Equal(t, 3, past.Total)
}

func TestLayoutEmptyInput(t *testing.T) {
	engine := NewLayoutEngine(DefaultLayoutConfig())

	page := engine.LayoutPage(nil, hashtag.Canvas{Width: 500, Height: 300}, hashtag.SortByRank, 0)
	assert.NotNil(t, page.Entries)
	assert.Empty(t, page.Entries)
	assert.Empty(t, engine.Layout(nil, hashtag.Canvas{Width: 500, Height: 300}, hashtag.SortByRank))
}

func TestNewLayoutEngineDefaults(t *testing.T) {
	engine := NewLayoutEngine(LayoutConfig{MinFont: 20, MaxFont: 10, Padding: -1})
	config := engine.Config()

	assert.Equal(t, 80, config.PageSize)
	assert.Equal(t, 150, config.MaxAttempts)
	assert.Equal(t, 20.0, config.MinFont)
	assert.Equal(t, 20.0, config.MaxFont)
	assert.Equal(t, 0.0, config.Padding)
}
