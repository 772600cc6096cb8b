package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

type ollamaTranslator struct {
	client *api.Client
	model  string
}

// NewOllamaTranslator targets a local ollama deployment, for running
// without any hosted API key.
func NewOllamaTranslator(baseURL, model string) (Translator, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if model == "" {
		model = "llama3.1:8b-instruct"
	}
	return &ollamaTranslator{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *ollamaTranslator) Translate(ctx context.Context, english string) (string, error) {
	if english == "" {
		return "", nil
	}
	stream := false
	var sb strings.Builder
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Translate into Korean:\n%s", english)},
		},
		Stream: &stream,
	}, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama translation failed: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
