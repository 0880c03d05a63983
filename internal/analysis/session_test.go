package analysis

import (
	"testing"

	"github.com/tsadoc/docuchat/internal/matrix"
)

func testMatrix() matrix.Matrix {
	return matrix.Matrix{
		ID:   "m1",
		Name: "Contract review",
		Questions: []matrix.Question{
			{ID: "q1", Text: "Summarize", ResponseType: matrix.ResponseText},
			{ID: "q2", Text: "List the parties", ResponseType: matrix.ResponseText},
		},
	}
}

func TestSessionAppendMovesCursorToNewest(t *testing.T) {
	sess := newSession(testMatrix(), "d1", "Contract dated 2024.")
	if err := sess.markLoading("q1"); err != nil {
		t.Fatalf("mark loading: %v", err)
	}
	if err := sess.append("q1", "It is a contract."); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := sess.append("q1", "Summary v2"); err != nil {
		t.Fatalf("append second: %v", err)
	}
	view, err := sess.View("q1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Entries != 2 {
		t.Fatalf("expected 2 entries, got %d", view.Entries)
	}
	if view.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", view.Cursor)
	}
	if view.Content != "Summary v2" {
		t.Fatalf("expected newest entry shown, got %q", view.Content)
	}
	if view.State != StateReady {
		t.Fatalf("expected ready state, got %s", view.State)
	}
}

func TestSessionNavigateClamps(t *testing.T) {
	sess := newSession(testMatrix(), "d1", "content")
	if err := sess.append("q1", "first"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := sess.append("q1", "second"); err != nil {
		t.Fatalf("append: %v", err)
	}

	view, err := sess.Navigate("q1", DirectionPrev)
	if err != nil {
		t.Fatalf("navigate prev: %v", err)
	}
	if view.Cursor != 0 || view.Content != "first" {
		t.Fatalf("expected cursor 0 showing first, got %d %q", view.Cursor, view.Content)
	}
	// Repeated prev at the floor is a no-op.
	for i := 0; i < 3; i++ {
		view, err = sess.Navigate("q1", DirectionPrev)
		if err != nil {
			t.Fatalf("navigate prev: %v", err)
		}
	}
	if view.Cursor != 0 {
		t.Fatalf("expected cursor clamped at 0, got %d", view.Cursor)
	}
	for i := 0; i < 5; i++ {
		view, err = sess.Navigate("q1", DirectionNext)
		if err != nil {
			t.Fatalf("navigate next: %v", err)
		}
	}
	if view.Cursor != 1 || view.Content != "second" {
		t.Fatalf("expected cursor clamped at last entry, got %d %q", view.Cursor, view.Content)
	}
}

func TestSessionNavigateUnknownQuestion(t *testing.T) {
	sess := newSession(testMatrix(), "d1", "content")
	if _, err := sess.Navigate("missing", DirectionPrev); err == nil {
		t.Fatal("expected error for unknown question")
	}
	if _, err := sess.Navigate("q1", Direction("sideways")); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestSessionErroredKeepsHistory(t *testing.T) {
	sess := newSession(testMatrix(), "d1", "content")

	// A failure with no prior entries leaves the question errored.
	sess.markErrored("q1", nil)
	view, err := sess.View("q1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.State != StateErrored {
		t.Fatalf("expected errored, got %s", view.State)
	}

	// A failure after a success returns the question to ready with its
	// history and cursor untouched.
	if err := sess.append("q2", "answer"); err != nil {
		t.Fatalf("append: %v", err)
	}
	sess.markErrored("q2", nil)
	view, err = sess.View("q2")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.State != StateReady || view.Entries != 1 || view.Cursor != 0 {
		t.Fatalf("expected ready with intact history, got %+v", view)
	}
}

func TestSessionResponsesUsesCursor(t *testing.T) {
	sess := newSession(testMatrix(), "d1", "content")
	if err := sess.append("q1", "v1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := sess.append("q1", "v2"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := sess.Navigate("q1", DirectionPrev); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	responses := sess.Responses()
	if got := responses["q1"]; got != "v1" {
		t.Fatalf("expected cursor entry v1, got %q", got)
	}
	if _, ok := responses["q2"]; ok {
		t.Fatal("expected no entry for question without history")
	}
}
