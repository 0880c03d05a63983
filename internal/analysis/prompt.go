package analysis

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/llm"
)

// DocumentPersona is the fixed system instruction for document analysis.
// Answers must come from the supplied document only, absences must be stated
// explicitly, and relevant passages cited.
const DocumentPersona = `You are a document analysis assistant. Your role is to analyze the provided document and answer questions about it.

Here are your instructions:
1. ONLY use information from the provided document content
2. If asked about information not in the document, clearly state that it's not present
3. When answering, cite relevant parts of the document
4. Keep responses focused and relevant to the document
5. Format your responses clearly and professionally

Remember:
- Stay strictly within the document's content
- Be precise in your answers
- Use direct quotes when appropriate
- Maintain professional communication`

// defaultContentBudget bounds how much document text is embedded in one
// completion request. Roughly 12k tokens of prose at 4 chars per token,
// leaving room for the persona, the question and the answer.
const defaultContentBudget = 48000

// PromptBuilder assembles the message list for one question against one
// document, keeping the embedded content within the context budget.
type PromptBuilder struct {
	budget int
}

// NewPromptBuilder returns a builder with the given content budget in runes.
// Non-positive budgets fall back to the default.
func NewPromptBuilder(budget int) PromptBuilder {
	if budget <= 0 {
		budget = defaultContentBudget
	}
	return PromptBuilder{budget: budget}
}

// Messages builds the completion request for a question: the persona, the
// document content and the analyze instruction form the system turn, the
// question text the user turn.
func (b PromptBuilder) Messages(documentContent, question string) []llm.Message {
	content := b.fit(documentContent)
	system := DocumentPersona + "\n\nDocument Content:\n" + content + "\n\nAnalyze the above document and answer questions about it."
	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
}

// Conversation builds a chat request over the same persona and document
// context, carrying the caller's prior turns instead of a single question.
func (b PromptBuilder) Conversation(documentContent string, turns []llm.Message) []llm.Message {
	content := b.fit(documentContent)
	system := DocumentPersona + "\n\nDocument Content:\n" + content + "\n\nAnalyze the above document and answer questions about it."
	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, turns...)
	return messages
}

// fit reduces oversized content to its leading chunks. Splitting happens on
// natural boundaries so the kept prefix stays coherent; if the splitter
// cannot process the text the prefix is cut on the budget directly.
func (b PromptBuilder) fit(content string) string {
	runes := []rune(content)
	if len(runes) <= b.budget {
		return content
	}
	logger := common.Logger()
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(b.budget/8),
		textsplitter.WithChunkOverlap(0),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		logger.Warn("analysis: content split failed, truncating", "error", err)
		return strings.TrimSpace(string(runes[:b.budget]))
	}
	var kept []string
	used := 0
	for _, chunk := range chunks {
		size := len([]rune(chunk))
		if used+size > b.budget {
			break
		}
		kept = append(kept, chunk)
		used += size
	}
	if len(kept) == 0 {
		return strings.TrimSpace(string(runes[:b.budget]))
	}
	logger.Debug("analysis: document content reduced to budget", "chunks", len(kept), "runes", used)
	return strings.Join(kept, "\n")
}
