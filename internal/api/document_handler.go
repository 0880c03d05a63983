package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/common"
)

// Documents arrive as already-parsed text; extraction from PDF or Office
// formats happens upstream of this service.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("content required"))
		return
	}
	doc, err := s.store.PutDocument(r.Context(), req.UserID, req.Name, req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: document stored", "document", doc.ID, "size", len(doc.Content))
	writeJSON(w, http.StatusCreated, summarizeDocument(doc))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id required"))
		return
	}
	docs, err := s.store.ListDocuments(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	summaries := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, summarizeDocument(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": summaries})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentID")
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	id := chi.URLParam(r, "documentID")
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: document deleted", "document", id)
	w.WriteHeader(http.StatusNoContent)
}
