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

// CreateMatrix stores a new matrix, assigning its id and creation time.
// Question ids left blank are assigned here so the caller can submit raw
// question text.
func (s *Store) CreateMatrix(ctx context.Context, name string, questions []matrix.Question, userID string) (matrix.Matrix, error) {
	if s == nil || s.db == nil {
		return matrix.Matrix{}, errors.New("catalog store not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return matrix.Matrix{}, errors.New("matrix name required")
	}
	if strings.TrimSpace(userID) == "" {
		return matrix.Matrix{}, errors.New("matrix owner required")
	}
	if len(questions) == 0 {
		return matrix.Matrix{}, errors.New("matrix requires at least one question")
	}
	normalized := make([]matrix.Question, 0, len(questions))
	for _, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return matrix.Matrix{}, errors.New("question text required")
		}
		if strings.TrimSpace(q.ID) == "" {
			q.ID = uuid.NewString()
		}
		if !q.ResponseType.Valid() {
			q.ResponseType = matrix.ResponseText
		}
		normalized = append(normalized, q)
	}
	m := matrix.Matrix{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    strings.TrimSpace(userID),
		Questions: normalized,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := encodeQuestions(m.Questions)
	if err != nil {
		return matrix.Matrix{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matrices (id, user_id, name, questions, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Name, encoded, formatTime(m.CreatedAt))
	if err != nil {
		return matrix.Matrix{}, fmt.Errorf("insert matrix: %w", err)
	}
	return m, nil
}

// GetMatrix returns the matrix with the given id.
func (s *Store) GetMatrix(ctx context.Context, id string) (matrix.Matrix, error) {
	if s == nil || s.db == nil {
		return matrix.Matrix{}, errors.New("catalog store not initialised")
	}
	var row matrixRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM matrices WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matrix.Matrix{}, fmt.Errorf("matrix %s: %w", id, ErrNotFound)
		}
		return matrix.Matrix{}, fmt.Errorf("select matrix: %w", err)
	}
	return row.toMatrix()
}

// ListMatrices returns all matrices owned by the given user. Ordering is a
// presentation concern; the default here is newest first.
func (s *Store) ListMatrices(ctx context.Context, userID string) ([]matrix.Matrix, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	rows := []matrixRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM matrices WHERE user_id = ? ORDER BY created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("select matrices: %w", err)
	}
	matrices := make([]matrix.Matrix, 0, len(rows))
	for _, row := range rows {
		m, err := row.toMatrix()
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, m)
	}
	return matrices, nil
}

// UpdateMatrixQuestions replaces a matrix's question list in full. Name,
// owner and creation time stay untouched.
func (s *Store) UpdateMatrixQuestions(ctx context.Context, id string, questions []matrix.Question) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	if len(questions) == 0 {
		return errors.New("matrix requires at least one question")
	}
	normalized := make([]matrix.Question, 0, len(questions))
	for _, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return errors.New("question text required")
		}
		if strings.TrimSpace(q.ID) == "" {
			q.ID = uuid.NewString()
		}
		if !q.ResponseType.Valid() {
			q.ResponseType = matrix.ResponseText
		}
		normalized = append(normalized, q)
	}
	encoded, err := encodeQuestions(normalized)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE matrices SET questions = ? WHERE id = ?`, encoded, id)
	if err != nil {
		return fmt.Errorf("update matrix questions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update matrix result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("matrix %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMatrix removes the matrix record only. Finalized analyses that
// reference it are kept; their matrix lookups degrade to a placeholder.
func (s *Store) DeleteMatrix(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM matrices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete matrix: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete matrix result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("matrix %s: %w", id, ErrNotFound)
	}
	return nil
}
