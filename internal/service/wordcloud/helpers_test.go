package wordcloud

import (
	"trendcloud/internal/domain/hashtag"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// record builds a raw record; zero rank or views leave the field absent
func record(name string, rank int, views int64) *hashtag.Record {
	data := &hashtag.AdditionalData{}
	if rank > 0 {
		data.Rank = intPtr(rank)
	}
	if views > 0 {
		data.VideoViews = int64Ptr(views)
	}
	return &hashtag.Record{Name: name, AdditionalData: data}
}

func document(source string, countries map[string][]*hashtag.Record) hashtag.Document {
	doc := hashtag.Document{Source: source, Countries: make(map[string]*hashtag.CountryData)}
	for code, recs := range countries {
		doc.Countries[code] = &hashtag.CountryData{Hashtags: recs}
	}
	return doc
}

func entryTexts(entries []hashtag.Entry) []string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return texts
}
