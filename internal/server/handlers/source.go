package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
)

// maxDocumentSize bounds uploaded source documents
const maxDocumentSize = 16 << 20

// DocumentStore persists uploaded documents; *storage.SourceStore satisfies it
type DocumentStore interface {
	SaveDocument(ctx context.Context, name string, body []byte) (string, error)
	ListDocuments(ctx context.Context, limit int) ([]hashtag.StoredDocument, error)
}

// SourceHandler accepts raw hashtag documents for the Postgres source
type SourceHandler struct {
	store   DocumentStore
	service hashtag.Service
	log     *zap.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(store DocumentStore, service hashtag.Service, log *zap.Logger) *SourceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SourceHandler{
		store:   store,
		service: service,
		log:     log,
	}
}

// UploadResponse is returned after a document is stored
type UploadResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Countries int    `json:"countries"`
	Refreshed bool   `json:"refreshed"`
}

// UploadDocument stores a raw document after checking that it decodes.
// ?refresh=true triggers a snapshot refresh afterwards.
func (h *SourceHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Missing document name", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Document too large or unreadable", err)
		return
	}

	doc, err := hashtag.DecodeDocument(name, body)
	if err != nil {
		if errors.Is(err, hashtag.ErrMalformedDocument) {
			respondWithError(w, http.StatusBadRequest, "Malformed hashtag document", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to decode document", err)
		return
	}

	id, err := h.store.SaveDocument(r.Context(), name, body)
	if err != nil {
		h.log.Error("Failed to store document", zap.String("name", name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to store document", err)
		return
	}

	resp := UploadResponse{
		ID:        id,
		Name:      name,
		Countries: len(doc.Countries),
	}

	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if _, err := h.service.Refresh(r.Context()); err != nil {
			h.log.Warn("Refresh after upload failed", zap.Error(err))
		} else {
			resp.Refreshed = true
		}
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// ListDocuments returns stored document metadata, newest first
func (h *SourceHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	docs, err := h.store.ListDocuments(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list documents", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents", err)
		return
	}
	if docs == nil {
		docs = []hashtag.StoredDocument{}
	}

	respondWithJSON(w, http.StatusOK, docs)
}
