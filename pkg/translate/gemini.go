package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiTranslator struct {
	client *genai.Client
	model  string
}

// NewGeminiTranslator is the Gemini-backed alternative provider.
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (Translator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}
	return &geminiTranslator{client: client, model: model}, nil
}

func (g *geminiTranslator) Translate(ctx context.Context, english string) (string, error) {
	if english == "" {
		return "", nil
	}
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf("Translate into Korean:\n%s", english)))
	if err != nil {
		return "", fmt.Errorf("gemini translation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini translation returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
