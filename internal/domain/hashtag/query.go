package hashtag

import "strings"

// SortBy selects the metric used to order and size entries
type SortBy string

const (
	SortByRank  SortBy = "rank"
	SortByViews SortBy = "views"
	SortByPosts SortBy = "posts"
	SortByName  SortBy = "name"
)

// AllCountries is the country filter sentinel that disables filtering
const AllCountries = "all"

// ParseSortBy parses a sort criterion, defaulting to rank
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortByViews:
		return SortByViews
	case SortByPosts:
		return SortByPosts
	case SortByName:
		return SortByName
	default:
		return SortByRank
	}
}

// Query narrows and orders a list of entries
type Query struct {
	Search  string
	Country string
	SortBy  SortBy
}
