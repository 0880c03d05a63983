package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/tsadoc/docuchat/internal/analysis"
	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/matrix"
)

// placeholder shown when an analysis references a matrix deleted since.
const matrixNamePlaceholder = "Matrix not found"

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.MatrixID) == "" || strings.TrimSpace(req.FileID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("matrix_id and file_id required"))
		return
	}
	sess, err := s.engine.AnalyzeDocument(r.Context(), req.MatrixID, req.FileID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.sessions.add(sess)
	logger.Info("api: analysis session opened", "session", sess.ID)
	writeJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// One in-flight completion per question: the UI disables the
	// regenerate action while loading, and the API refuses races the
	// engine does not guard against.
	if sess.Loading(req.QuestionID) {
		writeError(w, http.StatusConflict, fmt.Errorf("question %s already loading", req.QuestionID))
		return
	}
	if _, err := s.engine.Regenerate(r.Context(), sess, req.QuestionID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	view, err := sess.View(req.QuestionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.engine.Navigate(sess, req.QuestionID, analysis.Direction(req.Direction))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	sess, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	var req saveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	analysisID, err := s.engine.Finalize(r.Context(), sess, req.UserID, req.Name)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	logger.Info("api: analysis saved", "session", sess.ID, "analysis", analysisID)
	writeJSON(w, http.StatusCreated, map[string]string{"analysis_id": analysisID})
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.remove(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	common.Logger().Info("api: analysis session abandoned", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	matrixID := strings.TrimSpace(r.URL.Query().Get("matrix_id"))

	var (
		analyses []matrix.Analysis
		err      error
	)
	switch {
	case matrixID != "":
		analyses, err = s.store.ListAnalysesForMatrix(ctx, matrixID)
	case userID != "":
		analyses, err = s.store.ListAnalyses(ctx, userID)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id or matrix_id required"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	names := make(map[string]string)
	views := make([]analysisView, 0, len(analyses))
	for _, a := range analyses {
		name, ok := names[a.MatrixID]
		if !ok {
			name = s.matrixName(ctx, a.MatrixID)
			names[a.MatrixID] = name
		}
		views = append(views, analysisView{Analysis: a, MatrixName: name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": views})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	a, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisView{Analysis: a, MatrixName: s.matrixName(r.Context(), a.MatrixID)})
}

func (s *Server) sessionResponse(sess *analysis.Session) sessionResponse {
	return sessionResponse{
		SessionID: sess.ID,
		MatrixID:  sess.Matrix.ID,
		FileID:    sess.FileID,
		Questions: sess.Views(),
	}
}

func (s *Server) matrixName(ctx context.Context, matrixID string) string {
	m, err := s.store.GetMatrix(ctx, matrixID)
	if err != nil {
		return matrixNamePlaceholder
	}
	return m.Name
}
