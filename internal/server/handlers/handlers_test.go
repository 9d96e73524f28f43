package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/service/wordcloud"
)

const testDocument = `{
	"countries": {
		"MY": {"hashtags": [{"hashtag_name": "trend1", "additional_data": {"rank": 1, "video_views": 500000}}]},
		"SG": {"hashtags": [
			{"hashtag_name": "trend1", "additional_data": {"rank": 3, "video_views": 200000}},
			{"hashtag_name": "trend2", "additional_data": {"rank": 1, "video_views": 50000}}
		]}
	}
}`

type staticLoader struct {
	body string
	err  error
}

func (l staticLoader) Name() string { return "static" }

func (l staticLoader) Load(ctx context.Context) ([]hashtag.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	doc, err := hashtag.DecodeDocument("static.json", []byte(l.body))
	return []hashtag.Document{doc}, err
}

func newTestRouter(t *testing.T, loader hashtag.SourceLoader, refresh bool) http.Handler {
	t.Helper()

	svc := wordcloud.NewService([]hashtag.SourceLoader{loader}, nil, nil, nil, wordcloud.ServiceConfig{
		Aggregator: wordcloud.DefaultAggregatorConfig(),
		Layout:     wordcloud.DefaultLayoutConfig(),
	}, nil)
	if refresh {
		_, err := svc.Refresh(context.Background())
		require.NoError(t, err)
	}

	h := NewHashtagHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/hashtags", h.GetHashtags)
	r.Get("/hashtags/{text}", h.GetHashtag)
	r.Get("/countries", h.GetCountries)
	r.Get("/wordcloud", h.GetWordCloud)
	r.Post("/refresh", h.Refresh)
	return r
}

func doRequest(handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestGetHashtags(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, true)

	testCases := []struct {
		name     string
		target   string
		expected []string
	}{
		{"default rank order", "/hashtags", []string{"trend1", "trend2"}},
		{"country filter", "/hashtags?country=SG", []string{"trend2"}},
		{"search by country name", "/hashtags?search=malaysia", []string{"trend1"}},
		{"sort by views", "/hashtags?sort=views", []string{"trend1", "trend2"}},
		{"limit", "/hashtags?limit=1", []string{"trend1"}},
		{"no matches", "/hashtags?search=zzz", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp EntriesResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			texts := make([]string, 0, len(resp.Entries))
			for _, e := range resp.Entries {
				texts = append(texts, e.Text)
			}
			assert.Equal(t, tc.expected, texts)
			assert.Equal(t, len(tc.expected), resp.Count)
			assert.NotEmpty(t, resp.SnapshotID)
		})
	}
}

func TestGetHashtag(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, true)

	w := doRequest(router, http.MethodGet, "/hashtags/trend1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entry hashtag.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, int64(700000), entry.TotalViews)
	assert.Equal(t, 1, entry.Rank)
	assert.Equal(t, []string{"MY", "SG"}, entry.Countries)

	w = doRequest(router, http.MethodGet, "/hashtags/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCountries(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, true)

	w := doRequest(router, http.MethodGet, "/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var countries []CountryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &countries))
	assert.Equal(t, []CountryResponse{
		{Code: "MY", Name: "Malaysia", Entries: 1},
		{Code: "SG", Name: "Singapore", Entries: 1},
	}, countries)
}

func TestGetWordCloud(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, true)

	w := doRequest(router, http.MethodGet, "/wordcloud?width=800&height=400", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page hashtag.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Index)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, hashtag.Canvas{Width: 800, Height: 400}, page.Canvas)
	assert.Len(t, page.Entries, 2)

	testCases := []struct {
		target string
		status int
	}{
		{"/wordcloud?page=2", http.StatusNotFound},
		{"/wordcloud?page=0", http.StatusBadRequest},
		{"/wordcloud?page=abc", http.StatusBadRequest},
		{"/wordcloud?width=-5", http.StatusBadRequest},
		{"/wordcloud?height=tall", http.StatusBadRequest},
		{"/wordcloud?width=NaN&height=400", http.StatusBadRequest},
		{"/wordcloud?width=Inf&height=400", http.StatusBadRequest},
		{"/wordcloud?width=800&height=-Inf", http.StatusBadRequest},
		{"/wordcloud?width=0", http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tc.target, nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestGetWordCloudSingleDimension(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, true)

	testCases := []struct {
		target   string
		expected hashtag.Canvas
	}{
		{"/wordcloud?width=1200", hashtag.Canvas{Width: 1200, Height: 600}},
		{"/wordcloud?height=900", hashtag.Canvas{Width: 1000, Height: 900}},
		{"/wordcloud", hashtag.Canvas{Width: 1000, Height: 600}},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var page hashtag.Page
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			assert.Equal(t, tc.expected, page.Canvas)
		})
	}
}

func TestNoSnapshotYet(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, false)

	for _, target := range []string{"/hashtags", "/hashtags/trend1", "/countries", "/wordcloud"} {
		w := doRequest(router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}

func TestRefresh(t *testing.T) {
	router := newTestRouter(t, staticLoader{body: testDocument}, false)

	w := doRequest(router, http.MethodPost, "/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary SnapshotSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.NotEmpty(t, summary.SnapshotID)
	assert.Equal(t, 2, summary.Report.Entries)

	failing := newTestRouter(t, staticLoader{err: errors.New("down")}, false)
	w = doRequest(failing, http.MethodPost, "/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type memoryStore struct {
	saved []hashtag.StoredDocument
	err   error
}

func (m *memoryStore) SaveDocument(ctx context.Context, name string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	id := name + "-id"
	m.saved = append(m.saved, hashtag.StoredDocument{ID: id, Name: name, Body: body})
	return id, nil
}

func (m *memoryStore) ListDocuments(ctx context.Context, limit int) ([]hashtag.StoredDocument, error) {
	if len(m.saved) > limit {
		return m.saved[:limit], nil
	}
	return m.saved, nil
}

func TestUploadDocument(t *testing.T) {
	store := &memoryStore{}
	svc := wordcloud.NewService([]hashtag.SourceLoader{staticLoader{body: testDocument}}, nil, nil, nil, wordcloud.ServiceConfig{}, nil)
	h := NewSourceHandler(store, svc, nil)

	r := chi.NewRouter()
	r.Get("/sources", h.ListDocuments)
	r.Post("/sources", h.UploadDocument)

	w := doRequest(r, http.MethodPost, "/sources?name=my&refresh=true", []byte(testDocument))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, UploadResponse{ID: "my-id", Name: "my", Countries: 2, Refreshed: true}, resp)
	require.Len(t, store.saved, 1)

	w = doRequest(r, http.MethodPost, "/sources", []byte(testDocument))
	assert.Equal(t, http.StatusBadRequest, w.Code, "name is required")

	w = doRequest(r, http.MethodPost, "/sources?name=bad", []byte(`{"nope": 1}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, store.saved, 1, "malformed documents are not stored")

	w = doRequest(r, http.MethodGet, "/sources?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []hashtag.StoredDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "my", docs[0].Name)

	w = doRequest(r, http.MethodGet, "/sources?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.err = errors.New("db down")
	w = doRequest(r, http.MethodPost, "/sources?name=other", []byte(testDocument))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
