package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	openai "github.com/openai/openai-go/v2"

	"github.com/tsadoc/docuchat/internal/common"
)

const (
	defaultChatModel   = "gpt-4o-mini"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// OpenAIProvider sends completion requests through the OpenAI chat API.
type OpenAIProvider struct {
	client      openai.Client
	chatModel   string
	temperature float64
	maxTokens   int64
}

// NewOpenAIProvider configures a provider around an initialised client.
// Model and sampling parameters come from the environment with the
// application defaults as fallback.
func NewOpenAIProvider(client openai.Client) *OpenAIProvider {
	chatModel := strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL"))
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	temperature := defaultTemperature
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TEMPERATURE")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			temperature = parsed
		}
	}
	maxTokens := int64(defaultMaxTokens)
	if raw := strings.TrimSpace(os.Getenv("OPENAI_MAX_TOKENS")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxTokens = parsed
		}
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", chatModel, "temperature", temperature, "max_tokens", maxTokens)
	return &OpenAIProvider{client: client, chatModel: chatModel, temperature: temperature, maxTokens: maxTokens}
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.chatModel, "messages", len(messages))
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.chatModel),
		Temperature: openai.Float(o.temperature),
		MaxTokens:   openai.Int(o.maxTokens),
	}
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Status: apiErr.StatusCode, Err: err}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: chat completion succeeded", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
