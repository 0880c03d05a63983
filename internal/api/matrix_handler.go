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
	"github.com/tsadoc/docuchat/internal/matrix"
)

func (s *Server) handleCreateMatrix(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req createMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	questions := make([]matrix.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, q.toDomain())
	}
	created, err := s.store.CreateMatrix(r.Context(), req.Name, questions, req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: matrix created", "matrix", created.ID, "questions", len(created.Questions))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListMatrices(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id required"))
		return
	}
	matrices, err := s.store.ListMatrices(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matrices": matrices})
}

func (s *Server) handleGetMatrix(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matrixID")
	m, err := s.store.GetMatrix(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMatrixQuestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matrixID")
	var req updateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	questions := make([]matrix.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, q.toDomain())
	}
	if err := s.store.UpdateMatrixQuestions(r.Context(), id, questions); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := s.store.GetMatrix(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMatrix(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	id := chi.URLParam(r, "matrixID")
	if err := s.store.DeleteMatrix(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: matrix deleted", "matrix", id)
	w.WriteHeader(http.StatusNoContent)
}
