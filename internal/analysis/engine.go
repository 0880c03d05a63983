// Package analysis drives matrix-analysis sessions: one completion per
// question against one document, per-question response history with
// regeneration and cursor navigation, and transactional finalization into
// the catalog.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/llm"
	"github.com/tsadoc/docuchat/internal/llm/providers"
	"github.com/tsadoc/docuchat/internal/matrix"
)

// DocumentSource yields parsed document text by id.
type DocumentSource interface {
	GetDocumentContent(ctx context.Context, id string) (string, error)
}

// Repository is the persistence boundary the engine needs: matrix
// resolution on session start and the single analysis write on finalize.
type Repository interface {
	GetMatrix(ctx context.Context, id string) (matrix.Matrix, error)
	SaveAnalysis(ctx context.Context, matrixID, fileID, userID, name string, responses []matrix.Response) (string, error)
}

const defaultBatchConcurrency = 4

// Engine orchestrates analysis sessions. It holds no cross-session state;
// each session object carries its own histories.
type Engine struct {
	documents DocumentSource
	repo      Repository
	provider  llm.Provider
	prompts   PromptBuilder

	concurrency int
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithConcurrency bounds how many question completions run at once within
// one batch.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithPromptBuilder overrides the default prompt construction.
func WithPromptBuilder(b PromptBuilder) Option {
	return func(e *Engine) {
		e.prompts = b
	}
}

func NewEngine(documents DocumentSource, repo Repository, provider llm.Provider, opts ...Option) *Engine {
	e := &Engine{
		documents:   documents,
		repo:        repo,
		provider:    provider,
		prompts:     NewPromptBuilder(0),
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzeDocument opens a session for the (matrix, document) pairing and
// runs one completion per question. Questions resolve independently and in
// no guaranteed order; a failed question is marked errored and left for an
// individual regenerate while its siblings proceed. The returned session
// holds every question's state; Responses() maps question id to the current
// answer for all questions that succeeded.
func (e *Engine) AnalyzeDocument(ctx context.Context, matrixID, fileID string) (*Session, error) {
	logger := common.Logger()
	m, err := e.repo.GetMatrix(ctx, matrixID)
	if err != nil {
		return nil, fmt.Errorf("resolve matrix: %w", err)
	}
	if len(m.Questions) == 0 {
		return nil, fmt.Errorf("%w: matrix %s has no questions", ErrValidationFailed, matrixID)
	}
	content, err := e.documents.GetDocumentContent(ctx, fileID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrEmptyContent) {
			return nil, fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
		}
		return nil, fmt.Errorf("fetch document content: %w", err)
	}

	sess := newSession(m, fileID, content)
	logger.Info("analysis: session started", "session", sess.ID, "matrix", matrixID, "file", fileID, "questions", len(m.Questions))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)
	var failures sync.Map
	for _, q := range m.Questions {
		question := q
		if err := sess.markLoading(question.ID); err != nil {
			continue
		}
		group.Go(func() error {
			answer, err := e.complete(groupCtx, content, question.Text)
			if err != nil {
				cerr := completionError(question.ID, err)
				sess.markErrored(question.ID, cerr)
				failures.Store(question.ID, cerr)
				logger.Warn("analysis: question completion failed", "session", sess.ID, "question", question.ID, "error", cerr)
				return nil
			}
			if err := sess.append(question.ID, answer); err != nil {
				return err
			}
			logger.Debug("analysis: question completed", "session", sess.ID, "question", question.ID)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return sess, err
	}
	failed := 0
	failures.Range(func(_, _ any) bool {
		failed++
		return true
	})
	logger.Info("analysis: batch finished", "session", sess.ID, "answered", len(m.Questions)-failed, "failed", failed)
	return sess, nil
}

// Regenerate issues a fresh completion for one question, independent of its
// history. On success the new answer is appended and the cursor moves to
// it; on failure the history is left unchanged and the prior cursor stays
// valid.
func (e *Engine) Regenerate(ctx context.Context, sess *Session, questionID string) (string, error) {
	logger := common.Logger()
	question, ok := sess.Matrix.Question(questionID)
	if !ok {
		return "", fmt.Errorf("question %s: %w", questionID, ErrUnknownQuestion)
	}
	if err := sess.markLoading(questionID); err != nil {
		return "", err
	}
	answer, err := e.complete(ctx, sess.documentContent(), question.Text)
	if err != nil {
		cerr := completionError(questionID, err)
		sess.markErrored(questionID, cerr)
		logger.Warn("analysis: regenerate failed", "session", sess.ID, "question", questionID, "error", cerr)
		return "", cerr
	}
	if err := sess.append(questionID, answer); err != nil {
		return "", err
	}
	logger.Info("analysis: response regenerated", "session", sess.ID, "question", questionID)
	return answer, nil
}

// Navigate moves a question's history cursor. Pure local state transition.
func (e *Engine) Navigate(sess *Session, questionID string, direction Direction) (QuestionView, error) {
	return sess.Navigate(questionID, direction)
}

// Finalize validates the session, assembles one trimmed response per
// question from each history's cursor position, and persists the analysis
// as a single write. Validation failures never reach the repository; a
// repository failure leaves the session intact for a retry. Finalize is a
// creation, never an upsert: finalizing twice yields two analyses.
func (e *Engine) Finalize(ctx context.Context, sess *Session, userID, name string) (string, error) {
	logger := common.Logger()
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: analysis name required", ErrValidationFailed)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id required", ErrValidationFailed)
	}
	current := sess.Responses()
	responses := make([]matrix.Response, 0, len(sess.Matrix.Questions))
	for _, q := range sess.Matrix.Questions {
		answer, ok := current[q.ID]
		if !ok {
			return "", fmt.Errorf("%w: question %s has no response", ErrValidationFailed, q.ID)
		}
		responses = append(responses, matrix.Response{
			QuestionID: q.ID,
			Response:   strings.TrimSpace(answer),
		})
	}
	id, err := e.repo.SaveAnalysis(ctx, sess.Matrix.ID, sess.FileID, userID, name, responses)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	logger.Info("analysis: finalized", "session", sess.ID, "analysis", id, "responses", len(responses))
	return id, nil
}

func (e *Engine) complete(ctx context.Context, content, question string) (string, error) {
	return e.provider.Chat(ctx, e.prompts.Messages(content, question))
}

func completionError(questionID string, err error) *CompletionError {
	var statusErr *providers.StatusError
	if errors.As(err, &statusErr) {
		return &CompletionError{QuestionID: questionID, Status: statusErr.Status, Err: err}
	}
	return &CompletionError{QuestionID: questionID, Err: err}
}
