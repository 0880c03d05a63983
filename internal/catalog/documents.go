package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PutDocument stores parsed document text and returns the stored record.
func (s *Store) PutDocument(ctx context.Context, userID, name, content string) (Document, error) {
	if s == nil || s.db == nil {
		return Document{}, errors.New("catalog store not initialised")
	}
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" {
		return Document{}, errors.New("document owner required")
	}
	if name == "" {
		return Document{}, errors.New("document name required")
	}
	doc := Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, name, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Name, doc.Content, formatTime(doc.CreatedAt))
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// GetDocument returns the stored document for the given id.
func (s *Store) GetDocument(ctx context.Context, id string) (Document, error) {
	if s == nil || s.db == nil {
		return Document{}, errors.New("catalog store not initialised")
	}
	var row documentRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM documents WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("select document: %w", err)
	}
	return row.toDocument()
}

// GetDocumentContent returns the parsed text for the given document id. An
// unknown id fails with ErrNotFound, blank text with ErrEmptyContent.
func (s *Store) GetDocumentContent(ctx context.Context, id string) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("document %s: %w", id, ErrEmptyContent)
	}
	return doc.Content, nil
}

// ListDocuments returns all documents owned by the given user. Content is
// included; callers that only render listings should project what they need.
func (s *Store) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	rows := []documentRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM documents WHERE user_id = ? ORDER BY created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteDocument removes a document. Analyses referencing it are kept.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}
