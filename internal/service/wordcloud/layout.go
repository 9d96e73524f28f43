// internal/service/wordcloud/layout.go

package wordcloud

import (
	"math"
	"sort"
	"unicode/utf8"

	"trendcloud/internal/domain/hashtag"
)

// goldenAngle spreads consecutive spiral candidates evenly around the centre
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// LayoutConfig contains configuration for the layout engine
type LayoutConfig struct {
	PageSize    int
	MaxAttempts int
	MinFont     float64
	MaxFont     float64

	// Label box estimate: width = runes * font * CharWidthFactor,
	// height = font * LineHeightFactor
	CharWidthFactor  float64
	LineHeightFactor float64

	// Padding keeps labels away from the canvas edge, Margin away from each other
	Padding float64
	Margin  float64
}

// DefaultLayoutConfig returns the default layout configuration
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageSize:         80,
		MaxAttempts:      150,
		MinFont:          12,
		MaxFont:          48,
		CharWidthFactor:  0.6,
		LineHeightFactor: 1.2,
		Padding:          10,
		Margin:           4,
	}
}

// LayoutEngine positions word cloud labels without overlap
type LayoutEngine struct {
	config LayoutConfig
}

// NewLayoutEngine creates a new layout engine, filling unset values with defaults
func NewLayoutEngine(config LayoutConfig) *LayoutEngine {
	def := DefaultLayoutConfig()
	if config.PageSize <= 0 {
		config.PageSize = def.PageSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.MinFont <= 0 {
		config.MinFont = def.MinFont
	}
	if config.MaxFont < config.MinFont {
		config.MaxFont = config.MinFont
	}
	if config.CharWidthFactor <= 0 {
		config.CharWidthFactor = def.CharWidthFactor
	}
	if config.LineHeightFactor <= 0 {
		config.LineHeightFactor = def.LineHeightFactor
	}
	if config.Padding < 0 {
		config.Padding = 0
	}
	if config.Margin < 0 {
		config.Margin = 0
	}
	return &LayoutEngine{config: config}
}

// Config returns the effective configuration
func (l *LayoutEngine) Config() LayoutConfig {
	return l.config
}

// PageCount returns how many pages n entries occupy
func (l *LayoutEngine) PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + l.config.PageSize - 1) / l.config.PageSize
}

// Layout lays out every page of entries
func (l *LayoutEngine) Layout(entries []hashtag.Entry, canvas hashtag.Canvas, by hashtag.SortBy) []hashtag.Page {
	total := l.PageCount(len(entries))
	pages := make([]hashtag.Page, 0, total)
	for i := 0; i < total; i++ {
		pages = append(pages, l.LayoutPage(entries, canvas, by, i))
	}
	return pages
}

// LayoutPage lays out the entries of one zero-based page. A page past the
// end yields an empty page.
func (l *LayoutEngine) LayoutPage(entries []hashtag.Entry, canvas hashtag.Canvas, by hashtag.SortBy, page int) hashtag.Page {
	result := hashtag.Page{
		Index:   page,
		Total:   l.PageCount(len(entries)),
		Canvas:  canvas,
		Entries: []hashtag.PositionedEntry{},
	}
	if page < 0 {
		return result
	}

	start := page * l.config.PageSize
	if start >= len(entries) {
		return result
	}
	end := start + l.config.PageSize
	if end > len(entries) {
		end = len(entries)
	}

	result.Entries = l.place(entries[start:end], canvas, by)
	for _, pe := range result.Entries {
		if pe.Placed {
			result.Placed++
		} else {
			result.Fallback++
		}
	}
	return result
}

// rect is an axis-aligned label box
type rect struct {
	minX, minY, maxX, maxY float64
}

func boxAt(x, y, w, h float64) rect {
	return rect{minX: x - w/2, minY: y - h/2, maxX: x + w/2, maxY: y + h/2}
}

// overlaps reports whether r comes within margin of o
func (r rect) overlaps(o rect, margin float64) bool {
	return r.minX < o.maxX+margin && o.minX < r.maxX+margin &&
		r.minY < o.maxY+margin && o.minY < r.maxY+margin
}

// place runs the spiral search for one page
func (l *LayoutEngine) place(page []hashtag.Entry, canvas hashtag.Canvas, by hashtag.SortBy) []hashtag.PositionedEntry {
	out := make([]hashtag.PositionedEntry, len(page))
	fonts := l.fontSizes(page, by)

	innerW := canvas.Width - 2*l.config.Padding

	for i, e := range page {
		font := fonts[i]
		runes := float64(utf8.RuneCountInString(e.Text))
		// Shrink labels wider than the canvas, but never under MinFont
		if runes > 0 && innerW > 0 && runes*font*l.config.CharWidthFactor > innerW {
			font = math.Max(l.config.MinFont, innerW/(runes*l.config.CharWidthFactor))
		}
		out[i] = hashtag.PositionedEntry{
			Entry:    e,
			FontSize: font,
			Width:    runes * font * l.config.CharWidthFactor,
			Height:   font * l.config.LineHeightFactor,
		}
	}

	order := processingOrder(page)
	occupied := make([]rect, 0, len(page))

	for k, idx := range order {
		pe := &out[idx]
		if x, y, ok := l.spiralSearch(pe.Width, pe.Height, canvas, occupied); ok {
			pe.X, pe.Y, pe.Placed = x, y, true
		} else {
			pe.X, pe.Y = l.gridSlot(k, len(page), pe.Width, pe.Height, canvas)
		}
		occupied = append(occupied, boxAt(pe.X, pe.Y, pe.Width, pe.Height))
	}

	return out
}

// processingOrder returns page indexes with the best rank first
func processingOrder(page []hashtag.Entry) []int {
	order := make([]int, len(page))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lessByKnownRank(&page[order[i]], &page[order[j]])
	})
	return order
}

// spiralSearch walks a centre-biased elliptical spiral until a free slot is found
func (l *LayoutEngine) spiralSearch(w, h float64, canvas hashtag.Canvas, occupied []rect) (float64, float64, bool) {
	pad := l.config.Padding
	cx, cy := canvas.Width/2, canvas.Height/2
	rx, ry := cx-pad, cy-pad
	if rx <= 0 || ry <= 0 {
		return 0, 0, false
	}

	attempts := l.config.MaxAttempts
	for i := 0; i < attempts; i++ {
		t := math.Sqrt(float64(i) / float64(attempts))
		angle := float64(i) * goldenAngle
		x := cx + math.Cos(angle)*t*rx
		y := cy + math.Sin(angle)*t*ry

		box := boxAt(x, y, w, h)
		if !l.contained(box, canvas) {
			continue
		}
		if collides(box, occupied, l.config.Margin) {
			continue
		}
		return x, y, true
	}
	return 0, 0, false
}

func (l *LayoutEngine) contained(box rect, canvas hashtag.Canvas) bool {
	pad := l.config.Padding
	return box.minX >= pad && box.minY >= pad &&
		box.maxX <= canvas.Width-pad && box.maxY <= canvas.Height-pad
}

func collides(box rect, occupied []rect, margin float64) bool {
	for _, o := range occupied {
		if box.overlaps(o, margin) {
			return true
		}
	}
	return false
}

// gridSlot returns the fallback position for the k-th processed entry of n.
// The label is pulled inside the padded canvas when it fits there.
func (l *LayoutEngine) gridSlot(k, n int, w, h float64, canvas hashtag.Canvas) (float64, float64) {
	pad := l.config.Padding
	innerW := canvas.Width - 2*pad
	innerH := canvas.Height - 2*pad
	if innerW <= 0 || innerH <= 0 {
		return canvas.Width / 2, canvas.Height / 2
	}

	cols := int(math.Ceil(math.Sqrt(float64(n) * innerW / innerH)))
	if cols < 1 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols
	cellW := innerW / float64(cols)
	cellH := innerH / float64(rows)

	x := pad + (float64(k%cols)+0.5)*cellW
	y := pad + (float64(k/cols)+0.5)*cellH
	return clampCentre(x, w, pad, canvas.Width), clampCentre(y, h, pad, canvas.Height)
}

// clampCentre keeps a span of size around c inside [pad, limit-pad] when possible
func clampCentre(c, size, pad, limit float64) float64 {
	lo, hi := pad+size/2, limit-pad-size/2
	if lo > hi {
		return limit / 2
	}
	return math.Min(math.Max(c, lo), hi)
}

// fontSizes maps each entry's metric onto [MinFont, MaxFont] with a square
// root curve, normalized against the page maximum
func (l *LayoutEngine) fontSizes(page []hashtag.Entry, by hashtag.SortBy) []float64 {
	values := make([]float64, len(page))
	maxRank := 0
	for _, e := range page {
		if e.Rank > maxRank {
			maxRank = e.Rank
		}
	}

	var max float64
	for i, e := range page {
		var v float64
		switch by {
		case hashtag.SortByViews:
			v = float64(e.TotalViews)
		case hashtag.SortByPosts:
			v = float64(e.TotalPosts)
		default:
			if e.Rank > 0 {
				v = float64(maxRank - e.Rank + 1)
			}
		}
		if v < 0 {
			v = 0
		}
		values[i] = v
		if v > max {
			max = v
		}
	}

	span := l.config.MaxFont - l.config.MinFont
	fonts := make([]float64, len(page))
	for i, v := range values {
		norm := 0.0
		if max > 0 {
			norm = v / max
		}
		fonts[i] = l.config.MinFont + span*math.Sqrt(norm)
	}
	return fonts
}
