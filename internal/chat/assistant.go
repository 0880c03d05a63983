// Package chat answers free-form questions about one document, reusing the
// document-analysis persona the matrix engine prompts with.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tsadoc/docuchat/internal/analysis"
	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/llm"
)

// Assistant drives one-off document conversations. Unlike analysis
// sessions there is no server-side state: the caller sends its full turn
// history on every request.
type Assistant struct {
	provider  llm.Provider
	documents analysis.DocumentSource
	prompts   analysis.PromptBuilder
}

func NewAssistant(provider llm.Provider, documents analysis.DocumentSource) *Assistant {
	return &Assistant{
		provider:  provider,
		documents: documents,
		prompts:   analysis.NewPromptBuilder(0),
	}
}

// Respond answers the latest user turn against the document's content.
// Client-supplied system turns are dropped; the persona is fixed here.
func (a *Assistant) Respond(ctx context.Context, fileID string, turns []llm.Message) (string, error) {
	logger := common.Logger()
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: at least one message required", analysis.ErrValidationFailed)
	}
	content, err := a.documents.GetDocumentContent(ctx, fileID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrEmptyContent) {
			return "", fmt.Errorf("%w: %v", analysis.ErrDocumentUnavailable, err)
		}
		return "", fmt.Errorf("fetch document content: %w", err)
	}
	kept := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		kept = append(kept, llm.Message{Role: role, Content: turn.Content})
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("%w: at least one user message required", analysis.ErrValidationFailed)
	}
	logger.Debug("chat: responding", "file", fileID, "turns", len(kept))
	answer, err := a.provider.Chat(ctx, a.prompts.Conversation(content, kept))
	if err != nil {
		logger.Error("chat: completion failed", "file", fileID, "error", err)
		return "", fmt.Errorf("%w: %v", analysis.ErrCompletionFailed, err)
	}
	return answer, nil
}
