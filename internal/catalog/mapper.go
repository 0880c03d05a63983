package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tsadoc/docuchat/internal/matrix"
)

// Timestamps persist as RFC 3339 text so rows stay readable with any SQLite
// tooling and round-trip independent of driver time handling.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return parsed, nil
}

func (r documentRow) toDocument() (Document, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Content:   r.Content,
		CreatedAt: createdAt,
	}, nil
}

func (r matrixRow) toMatrix() (matrix.Matrix, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return matrix.Matrix{}, err
	}
	var questions []matrix.Question
	if err := json.Unmarshal([]byte(r.Questions), &questions); err != nil {
		return matrix.Matrix{}, fmt.Errorf("decode questions for matrix %s: %w", r.ID, err)
	}
	return matrix.Matrix{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Questions: questions,
		CreatedAt: createdAt,
	}, nil
}

func (r analysisRow) toAnalysis() (matrix.Analysis, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return matrix.Analysis{}, err
	}
	var responses []matrix.Response
	if err := json.Unmarshal([]byte(r.Responses), &responses); err != nil {
		return matrix.Analysis{}, fmt.Errorf("decode responses for analysis %s: %w", r.ID, err)
	}
	return matrix.Analysis{
		ID:        r.ID,
		MatrixID:  r.MatrixID,
		FileID:    r.FileID,
		UserID:    r.UserID,
		Name:      r.Name,
		Responses: responses,
		CreatedAt: createdAt,
	}, nil
}

func encodeQuestions(questions []matrix.Question) (string, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	return string(data), nil
}

func encodeResponses(responses []matrix.Response) (string, error) {
	data, err := json.Marshal(responses)
	if err != nil {
		return "", fmt.Errorf("encode responses: %w", err)
	}
	return string(data), nil
}
