package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/brokerdesk/bd-wap/assistant/domain"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider is the adapter for the Google Gemini API.
type GeminiProvider struct {
	apiKey string
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Chat implements the AIProvider interface for Gemini.
func (p *GeminiProvider) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if p.apiKey == "" {
		return domain.ChatResponse{}, fmt.Errorf("gemini provider has no API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return domain.ChatResponse{}, err
	}

	var genConfig *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		genConfig = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, ""),
		}
	}

	var contents []*genai.Content
	for _, t := range req.History {
		role := genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	if req.UserText != "" {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: req.UserText}},
		})
	}

	model := req.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return domain.ChatResponse{}, err
	}
	if result == nil || len(result.Candidates) == 0 {
		return domain.ChatResponse{}, fmt.Errorf("no response from gemini")
	}

	// Extract text manually from the parts, more robust than result.Text()
	var fullText string
	candidate := result.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				fullText += part.Text
			}
		}
	}
	if fullText == "" {
		return domain.ChatResponse{}, fmt.Errorf("empty response from gemini")
	}

	return domain.ChatResponse{Text: fullText}, nil
}
