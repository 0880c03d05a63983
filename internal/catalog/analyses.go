package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsadoc/docuchat/internal/matrix"
)

// SaveAnalysis persists a finalized analysis as a single insert and returns
// the assigned id. Analyses are immutable afterwards; there is no update.
func (s *Store) SaveAnalysis(ctx context.Context, matrixID, fileID, userID, name string, responses []matrix.Response) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("catalog store not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("analysis name required")
	}
	if strings.TrimSpace(matrixID) == "" || strings.TrimSpace(fileID) == "" || strings.TrimSpace(userID) == "" {
		return "", errors.New("analysis references required")
	}
	encoded, err := encodeResponses(responses)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, matrix_id, file_id, user_id, name, responses, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, matrixID, fileID, userID, name, encoded, formatTime(time.Now().UTC()))
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis returns the analysis with the given id.
func (s *Store) GetAnalysis(ctx context.Context, id string) (matrix.Analysis, error) {
	if s == nil || s.db == nil {
		return matrix.Analysis{}, errors.New("catalog store not initialised")
	}
	var row analysisRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM analyses WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matrix.Analysis{}, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
		}
		return matrix.Analysis{}, fmt.Errorf("select analysis: %w", err)
	}
	return row.toAnalysis()
}

// ListAnalyses returns all analyses finalized by the given user.
func (s *Store) ListAnalyses(ctx context.Context, userID string) ([]matrix.Analysis, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	rows := []analysisRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM analyses WHERE user_id = ? ORDER BY created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("select analyses: %w", err)
	}
	return mapAnalyses(rows)
}

// ListAnalysesForMatrix returns all analyses derived from the given matrix,
// including analyses whose matrix has since been deleted elsewhere.
func (s *Store) ListAnalysesForMatrix(ctx context.Context, matrixID string) ([]matrix.Analysis, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	rows := []analysisRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM analyses WHERE matrix_id = ? ORDER BY created_at DESC`, matrixID); err != nil {
		return nil, fmt.Errorf("select analyses: %w", err)
	}
	return mapAnalyses(rows)
}

func mapAnalyses(rows []analysisRow) ([]matrix.Analysis, error) {
	analyses := make([]matrix.Analysis, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAnalysis()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}
