package wordcloud

import (
	"sort"
	"strings"

	"github.com/maruel/natural"

	"trendcloud/internal/domain/hashtag"
)

// FilterAndSort narrows entries by search term and country and orders them
// by the requested metric. The input slice is not modified.
func FilterAndSort(entries []hashtag.Entry, q hashtag.Query) []hashtag.Entry {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	country := strings.TrimSpace(q.Country)
	if strings.EqualFold(country, hashtag.AllCountries) {
		country = ""
	}

	names := make(map[string]string)
	out := make([]hashtag.Entry, 0, len(entries))
	for _, e := range entries {
		if country != "" && !strings.EqualFold(e.Country, country) {
			continue
		}
		if search != "" && !matchesSearch(e, search, names) {
			continue
		}
		out = append(out, e)
	}

	sortEntries(out, q.SortBy)
	return out
}

func matchesSearch(e hashtag.Entry, search string, names map[string]string) bool {
	if strings.Contains(strings.ToLower(e.Text), search) {
		return true
	}
	name, ok := names[e.Country]
	if !ok {
		name = strings.ToLower(hashtag.CountryName(e.Country))
		names[e.Country] = name
	}
	return name != "" && strings.Contains(name, search)
}

// sortEntries orders entries in place; missing metric values sort last
func sortEntries(entries []hashtag.Entry, by hashtag.SortBy) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		switch by {
		case hashtag.SortByViews:
			if a.TotalViews != b.TotalViews {
				return a.TotalViews > b.TotalViews
			}
		case hashtag.SortByPosts:
			if a.TotalPosts != b.TotalPosts {
				return a.TotalPosts > b.TotalPosts
			}
		case hashtag.SortByName:
			if a.Text != b.Text {
				return natural.Less(a.Text, b.Text)
			}
		}
		return lessByKnownRank(a, b)
	})
}

// lessByKnownRank is lessByRank with unranked entries moved to the end
func lessByKnownRank(a, b *hashtag.Entry) bool {
	aKnown, bKnown := a.Rank > 0, b.Rank > 0
	if aKnown != bKnown {
		return aKnown
	}
	return lessByRank(a, b)
}
