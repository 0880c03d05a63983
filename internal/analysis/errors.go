package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentUnavailable aborts a whole batch: the document id is
	// unknown or its text content is empty.
	ErrDocumentUnavailable = errors.New("analysis: document unavailable")
	// ErrValidationFailed is reported before any network or repository
	// side effect.
	ErrValidationFailed = errors.New("analysis: validation failed")
	// ErrPersistenceFailed wraps repository errors during finalize. The
	// session is left untouched so finalize can be retried.
	ErrPersistenceFailed = errors.New("analysis: persistence failed")
	// ErrUnknownQuestion means the question id is not part of the
	// session's matrix.
	ErrUnknownQuestion = errors.New("analysis: unknown question")
	// ErrCompletionFailed scopes a failed completion call to one
	// question; sibling questions are unaffected.
	ErrCompletionFailed = errors.New("analysis: completion failed")
)

// CompletionError reports a failed completion call for one question,
// carrying the upstream HTTP status when one was observed.
type CompletionError struct {
	QuestionID string
	Status     int
	Err        error
}

func (e *CompletionError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("question %s: completion failed (status %d): %v", e.QuestionID, e.Status, e.Err)
	}
	return fmt.Sprintf("question %s: completion failed: %v", e.QuestionID, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCompletionFailed) match wrapped completion
// failures.
func (e *CompletionError) Is(target error) bool {
	return target == ErrCompletionFailed
}
