package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tsadoc/docuchat/internal/common"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.FileID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file_id required"))
		return
	}
	answer, err := s.assistant.Respond(r.Context(), req.FileID, req.Messages)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	logger.Info("api: chat completion succeeded", "file", req.FileID, "provider", s.provider.Name())
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":   answer,
		"provider": s.provider.Name(),
	})
}
