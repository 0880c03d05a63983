package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tsadoc/docuchat/internal/matrix"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{Path: filepath.Join(t.TempDir(), "catalog.db")}
	cfg.applyDefaults()
	store, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDocumentRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	doc, err := store.PutDocument(ctx, "u1", "  contract.txt  ", "Contract dated 2024.")
	if err != nil {
		t.Fatalf("put document: %v", err)
	}
	if doc.ID == "" || doc.Name != "contract.txt" {
		t.Fatalf("unexpected stored document %+v", doc)
	}

	got, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Content != "Contract dated 2024." || got.UserID != "u1" {
		t.Fatalf("unexpected document %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected creation time to round-trip")
	}

	content, err := store.GetDocumentContent(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if content != "Contract dated 2024." {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestDocumentContentErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetDocumentContent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc, err := store.PutDocument(ctx, "u1", "blank.txt", "   \n\t ")
	if err != nil {
		t.Fatalf("put document: %v", err)
	}
	if _, err := store.GetDocumentContent(ctx, doc.ID); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestPutDocumentValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.PutDocument(ctx, "", "name", "text"); err == nil {
		t.Fatal("expected error for missing owner")
	}
	if _, err := store.PutDocument(ctx, "u1", "  ", "text"); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestListAndDeleteDocuments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.PutDocument(ctx, "u1", "a.txt", "a")
	if err != nil {
		t.Fatalf("put document: %v", err)
	}
	if _, err := store.PutDocument(ctx, "u2", "other.txt", "b"); err != nil {
		t.Fatalf("put document: %v", err)
	}

	docs, err := store.ListDocuments(ctx, "u1")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != first.ID {
		t.Fatalf("expected only u1's document, got %+v", docs)
	}

	if err := store.DeleteDocument(ctx, first.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if err := store.DeleteDocument(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	questions := []matrix.Question{
		{Text: "  Summarize  "},
		{ID: "q-fixed", Text: "List the parties", ResponseType: matrix.ResponseMultiple},
		{Text: "How many pages?", ResponseType: matrix.ResponseType("weird")},
	}
	created, err := store.CreateMatrix(ctx, "Contract review", questions, "u1")
	if err != nil {
		t.Fatalf("create matrix: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned matrix id")
	}

	got, err := store.GetMatrix(ctx, created.ID)
	if err != nil {
		t.Fatalf("get matrix: %v", err)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got.Questions))
	}
	if got.Questions[0].Text != "Summarize" {
		t.Fatalf("expected trimmed question text, got %q", got.Questions[0].Text)
	}
	if got.Questions[0].ID == "" {
		t.Fatal("expected assigned question id")
	}
	if got.Questions[1].ID != "q-fixed" || got.Questions[1].ResponseType != matrix.ResponseMultiple {
		t.Fatalf("expected explicit id and type preserved, got %+v", got.Questions[1])
	}
	if got.Questions[2].ResponseType != matrix.ResponseText {
		t.Fatalf("expected invalid response type to default to text, got %q", got.Questions[2].ResponseType)
	}
}

func TestCreateMatrixValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	q := []matrix.Question{{Text: "Summarize"}}

	if _, err := store.CreateMatrix(ctx, "  ", q, "u1"); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := store.CreateMatrix(ctx, "Review", q, ""); err == nil {
		t.Fatal("expected error for missing owner")
	}
	if _, err := store.CreateMatrix(ctx, "Review", nil, "u1"); err == nil {
		t.Fatal("expected error for empty questions")
	}
	if _, err := store.CreateMatrix(ctx, "Review", []matrix.Question{{Text: "  "}}, "u1"); err == nil {
		t.Fatal("expected error for blank question text")
	}
}

func TestUpdateMatrixQuestions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateMatrix(ctx, "Review", []matrix.Question{{Text: "Summarize"}}, "u1")
	if err != nil {
		t.Fatalf("create matrix: %v", err)
	}

	replacement := []matrix.Question{
		{ID: "qa", Text: "Who signed?"},
		{ID: "qb", Text: "When?", ResponseType: matrix.ResponseNumber},
	}
	if err := store.UpdateMatrixQuestions(ctx, created.ID, replacement); err != nil {
		t.Fatalf("update questions: %v", err)
	}

	got, err := store.GetMatrix(ctx, created.ID)
	if err != nil {
		t.Fatalf("get matrix: %v", err)
	}
	if got.Name != "Review" || got.UserID != "u1" {
		t.Fatalf("expected name and owner untouched, got %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected creation time untouched, got %v want %v", got.CreatedAt, created.CreatedAt)
	}
	if len(got.Questions) != 2 || got.Questions[0].ID != "qa" || got.Questions[1].ResponseType != matrix.ResponseNumber {
		t.Fatalf("expected replaced question list, got %+v", got.Questions)
	}

	if err := store.UpdateMatrixQuestions(ctx, "missing", replacement); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMatrixKeepsAnalyses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateMatrix(ctx, "Review", []matrix.Question{{ID: "q1", Text: "Summarize"}}, "u1")
	if err != nil {
		t.Fatalf("create matrix: %v", err)
	}
	analysisID, err := store.SaveAnalysis(ctx, created.ID, "d1", "u1", "First pass", []matrix.Response{
		{QuestionID: "q1", Response: "A contract."},
	})
	if err != nil {
		t.Fatalf("save analysis: %v", err)
	}

	if err := store.DeleteMatrix(ctx, created.ID); err != nil {
		t.Fatalf("delete matrix: %v", err)
	}
	if _, err := store.GetMatrix(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected matrix gone, got %v", err)
	}

	kept, err := store.GetAnalysis(ctx, analysisID)
	if err != nil {
		t.Fatalf("expected analysis to survive matrix deletion: %v", err)
	}
	if kept.MatrixID != created.ID {
		t.Fatalf("expected dangling matrix reference preserved, got %+v", kept)
	}
}

func TestAnalysisRoundTripAndListings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateMatrix(ctx, "Review", []matrix.Question{{ID: "q1", Text: "Summarize"}}, "u1")
	if err != nil {
		t.Fatalf("create matrix: %v", err)
	}
	responses := []matrix.Response{{QuestionID: "q1", Response: "A contract."}}

	id, err := store.SaveAnalysis(ctx, created.ID, "d1", "u1", "  First pass  ", responses)
	if err != nil {
		t.Fatalf("save analysis: %v", err)
	}

	got, err := store.GetAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("get analysis: %v", err)
	}
	if got.Name != "First pass" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
	if len(got.Responses) != 1 || got.Responses[0] != responses[0] {
		t.Fatalf("expected responses to round-trip, got %+v", got.Responses)
	}

	second, err := store.SaveAnalysis(ctx, created.ID, "d1", "u1", "Second pass", responses)
	if err != nil {
		t.Fatalf("save analysis: %v", err)
	}
	if second == id {
		t.Fatal("expected a fresh id per save")
	}

	byMatrix, err := store.ListAnalysesForMatrix(ctx, created.ID)
	if err != nil {
		t.Fatalf("list by matrix: %v", err)
	}
	if len(byMatrix) != 2 {
		t.Fatalf("expected 2 analyses for matrix, got %d", len(byMatrix))
	}
	byUser, err := store.ListAnalyses(ctx, "u1")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected 2 analyses for user, got %d", len(byUser))
	}
	if len(byUser[0].Responses) != 1 {
		t.Fatalf("expected responses in listing, got %+v", byUser[0])
	}
}

func TestSaveAnalysisValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	responses := []matrix.Response{{QuestionID: "q1", Response: "x"}}

	if _, err := store.SaveAnalysis(ctx, "m1", "d1", "u1", "  ", responses); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := store.SaveAnalysis(ctx, "", "d1", "u1", "Review", responses); err == nil {
		t.Fatal("expected error for missing matrix reference")
	}
	if _, err := store.SaveAnalysis(ctx, "m1", "d1", "", "Review", responses); err == nil {
		t.Fatal("expected error for missing user reference")
	}
}
