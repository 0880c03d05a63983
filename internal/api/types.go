package api

import (
	"time"

	"github.com/tsadoc/docuchat/internal/analysis"
	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/llm"
	"github.com/tsadoc/docuchat/internal/matrix"
)

type questionPayload struct {
	ID           string `json:"id,omitempty"`
	Text         string `json:"text"`
	ResponseType string `json:"responseType,omitempty"`
}

func (q questionPayload) toDomain() matrix.Question {
	return matrix.Question{
		ID:           q.ID,
		Text:         q.Text,
		ResponseType: matrix.ResponseType(q.ResponseType),
	}
}

type createMatrixRequest struct {
	Name      string            `json:"name"`
	UserID    string            `json:"user_id"`
	Questions []questionPayload `json:"questions"`
}

type updateQuestionsRequest struct {
	Questions []questionPayload `json:"questions"`
}

type createDocumentRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// documentSummary is the listing projection; content is only returned when
// a single document is fetched by id.
type documentSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func summarizeDocument(doc catalog.Document) documentSummary {
	return documentSummary{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Name:      doc.Name,
		Size:      len(doc.Content),
		CreatedAt: doc.CreatedAt,
	}
}

type startSessionRequest struct {
	MatrixID string `json:"matrix_id"`
	FileID   string `json:"file_id"`
}

type sessionResponse struct {
	SessionID string                  `json:"session_id"`
	MatrixID  string                  `json:"matrix_id"`
	FileID    string                  `json:"file_id"`
	Questions []analysis.QuestionView `json:"questions"`
}

type regenerateRequest struct {
	QuestionID string `json:"question_id"`
}

type navigateRequest struct {
	QuestionID string `json:"question_id"`
	Direction  string `json:"direction"`
}

type saveSessionRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// analysisView decorates a stored analysis with its matrix name for
// display. Analyses outlive their matrices; a deleted matrix degrades to
// the placeholder instead of erroring.
type analysisView struct {
	matrix.Analysis
	MatrixName string `json:"matrixName"`
}

type chatRequest struct {
	FileID   string        `json:"file_id"`
	Messages []llm.Message `json:"messages"`
}
