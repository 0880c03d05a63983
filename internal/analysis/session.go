package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsadoc/docuchat/internal/matrix"
)

// QuestionState tracks one question through a session: pending before its
// first completion is dispatched, loading while a request is in flight,
// ready once at least one entry exists, errored after a failed call with no
// prior success pending a regenerate.
type QuestionState string

const (
	StatePending QuestionState = "pending"
	StateLoading QuestionState = "loading"
	StateReady   QuestionState = "ready"
	StateErrored QuestionState = "errored"
)

// Direction moves a question's history cursor.
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// history is the append-only answer sequence for one question plus the
// cursor selecting the entry shown and eligible for finalization.
type history struct {
	state   QuestionState
	entries []string
	cursor  int
	lastErr string
}

// QuestionView is the read model the presentation layer renders for one
// question slot.
type QuestionView struct {
	QuestionID string        `json:"questionId"`
	State      QuestionState `json:"state"`
	Content    string        `json:"content"`
	Entries    int           `json:"entries"`
	Cursor     int           `json:"cursor"`
	Error      string        `json:"error,omitempty"`
}

// Session is one open analysis of a matrix against a document. Sessions are
// transient: nothing here is persisted until Finalize, and an abandoned
// session is simply discarded. All state access is mutex-guarded because
// batch completions resolve from concurrent goroutines.
type Session struct {
	ID        string
	Matrix    matrix.Matrix
	FileID    string
	CreatedAt time.Time

	mu        sync.RWMutex
	content   string
	histories map[string]*history
}

func newSession(m matrix.Matrix, fileID, content string) *Session {
	histories := make(map[string]*history, len(m.Questions))
	for _, q := range m.Questions {
		histories[q.ID] = &history{state: StatePending}
	}
	return &Session{
		ID:        uuid.NewString(),
		Matrix:    m,
		FileID:    fileID,
		CreatedAt: time.Now().UTC(),
		content:   content,
		histories: histories,
	}
}

func (s *Session) documentContent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

func (s *Session) markLoading(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[questionID]
	if !ok {
		return fmt.Errorf("question %s: %w", questionID, ErrUnknownQuestion)
	}
	h.state = StateLoading
	return nil
}

// append records a successful completion. Entries only ever grow and the
// cursor snaps to the newest entry.
func (s *Session) append(questionID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[questionID]
	if !ok {
		return fmt.Errorf("question %s: %w", questionID, ErrUnknownQuestion)
	}
	h.entries = append(h.entries, response)
	h.cursor = len(h.entries) - 1
	h.state = StateReady
	h.lastErr = ""
	return nil
}

// markErrored records a failed completion. Existing entries and the cursor
// stay valid: a question with prior successes returns to ready.
func (s *Session) markErrored(questionID string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[questionID]
	if !ok {
		return
	}
	if len(h.entries) > 0 {
		h.state = StateReady
	} else {
		h.state = StateErrored
	}
	if cause != nil {
		h.lastErr = cause.Error()
	}
}

// Navigate moves the cursor within a question's history. Out-of-range moves
// clamp: prev floors at 0, next ceils at the last entry. No network call,
// no persistence.
func (s *Session) Navigate(questionID string, direction Direction) (QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[questionID]
	if !ok {
		return QuestionView{}, fmt.Errorf("question %s: %w", questionID, ErrUnknownQuestion)
	}
	switch direction {
	case DirectionPrev:
		if h.cursor > 0 {
			h.cursor--
		}
	case DirectionNext:
		if h.cursor < len(h.entries)-1 {
			h.cursor++
		}
	default:
		return QuestionView{}, fmt.Errorf("%w: unknown direction %q", ErrValidationFailed, direction)
	}
	return viewOf(questionID, h), nil
}

// View returns the current read model for one question.
func (s *Session) View(questionID string) (QuestionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[questionID]
	if !ok {
		return QuestionView{}, fmt.Errorf("question %s: %w", questionID, ErrUnknownQuestion)
	}
	return viewOf(questionID, h), nil
}

// Views returns the read model for every question in matrix order.
func (s *Session) Views() []QuestionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]QuestionView, 0, len(s.Matrix.Questions))
	for _, q := range s.Matrix.Questions {
		if h, ok := s.histories[q.ID]; ok {
			views = append(views, viewOf(q.ID, h))
		}
	}
	return views
}

// Responses returns the current entry for every question that has one,
// keyed by question id.
func (s *Session) Responses() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for id, h := range s.histories {
		if len(h.entries) > 0 {
			out[id] = h.entries[h.cursor]
		}
	}
	return out
}

// Loading reports whether the given question has a request in flight.
func (s *Session) Loading(questionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[questionID]
	return ok && h.state == StateLoading
}

func viewOf(questionID string, h *history) QuestionView {
	view := QuestionView{
		QuestionID: questionID,
		State:      h.state,
		Entries:    len(h.entries),
		Cursor:     h.cursor,
		Error:      h.lastErr,
	}
	if len(h.entries) > 0 {
		view.Content = h.entries[h.cursor]
	}
	return view
}
