package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAITranslator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAITranslator builds the default translator backed by the
// OpenAI chat completions API.
func NewOpenAITranslator(apiKey, model string) Translator {
	m := openai.ChatModel(model)
	if model == "" {
		m = openai.ChatModelGPT4oMini
	}
	return &openAITranslator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  m,
	}
}

func (o *openAITranslator) Translate(ctx context.Context, english string) (string, error) {
	if english == "" {
		return "", nil
	}
	chatCompletion, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(fmt.Sprintf("Translate into Korean:\n%s", english)),
			},
			Model: o.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai translation failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("openai translation returned no choices")
	}
	return strings.TrimSpace(chatCompletion.Choices[0].Message.Content), nil
}
