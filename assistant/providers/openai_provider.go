package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/brokerdesk/bd-wap/assistant/domain"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider is the adapter for the OpenAI API.
type OpenAIProvider struct {
	apiKey string
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{apiKey: apiKey}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Chat implements the AIProvider interface for OpenAI.
func (p *OpenAIProvider) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if p.apiKey == "" {
		return domain.ChatResponse{}, fmt.Errorf("openai provider has no API key")
	}

	client := openai.NewClient(
		option.WithAPIKey(p.apiKey),
	)

	model := req.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, t := range req.History {
		if t.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Text))
		} else {
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	if req.UserText != "" {
		messages = append(messages, openai.UserMessage(req.UserText))
	}

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return domain.ChatResponse{}, err
	}
	if len(completion.Choices) == 0 {
		return domain.ChatResponse{}, fmt.Errorf("no response from openai")
	}

	return domain.ChatResponse{Text: completion.Choices[0].Message.Content}, nil
}
