package analysis

import (
	"strings"
	"testing"

	"github.com/tsadoc/docuchat/internal/llm"
)

func TestMessagesEmbedsDocumentAndQuestion(t *testing.T) {
	builder := NewPromptBuilder(0)
	msgs := builder.Messages("Contract dated 2024.", "Summarize")
	if len(msgs) != 2 {
		t.Fatalf("expected system and user turns, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("expected system role first, got %q", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, DocumentPersona) {
		t.Fatal("expected persona in system turn")
	}
	if !strings.Contains(msgs[0].Content, "Document Content:\nContract dated 2024.") {
		t.Fatal("expected document content in system turn")
	}
	if msgs[1].Role != "user" || msgs[1].Content != "Summarize" {
		t.Fatalf("expected question as user turn, got %+v", msgs[1])
	}
}

func TestMessagesFitsOversizedContent(t *testing.T) {
	builder := NewPromptBuilder(200)
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	msgs := builder.Messages(content, "Summarize")
	system := msgs[0].Content
	frame := len([]rune(DocumentPersona + "\n\nDocument Content:\n\n\nAnalyze the above document and answer questions about it."))
	// Budget plus the frame plus the newlines joining kept chunks.
	if got := len([]rune(system)); got > frame+200+16 {
		t.Fatalf("embedded content exceeds budget: %d runes", got)
	}
	if !strings.Contains(system, "The quick brown fox") {
		t.Fatal("expected the leading text to survive the cut")
	}
}

func TestConversationPrependsSystemTurn(t *testing.T) {
	builder := NewPromptBuilder(0)
	turns := []llm.Message{
		{Role: "user", Content: "What is this?"},
		{Role: "assistant", Content: "A contract."},
		{Role: "user", Content: "Who signed it?"},
	}
	msgs := builder.Conversation("Contract dated 2024.", turns)
	if len(msgs) != 4 {
		t.Fatalf("expected system turn plus history, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("expected system turn first, got %q", msgs[0].Role)
	}
	for i, turn := range turns {
		if msgs[i+1] != turn {
			t.Fatalf("turn %d altered: got %+v", i, msgs[i+1])
		}
	}
}
