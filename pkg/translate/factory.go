package translate

import (
	"context"
	"fmt"

	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/pkg/Logger"
)

// FromSettings selects the translator provider by configuration.
func FromSettings(ctx context.Context, cfg config.EngineConfig, logger *Logger.Logger) (Translator, error) {
	switch cfg.TranslatorProvider {
	case "", "openai":
		if cfg.OpenAIApiKey == "" {
			return nil, fmt.Errorf("openai translator selected but no api key configured")
		}
		return NewOpenAITranslator(cfg.OpenAIApiKey, ""), nil
	case "gemini":
		return NewGeminiTranslator(ctx, cfg.GeminiApiKey, "")
	case "ollama":
		return NewOllamaTranslator(cfg.OllamaURL, cfg.OllamaModel)
	case "none":
		// Transcription-only deployments: confirmed windows keep an
		// empty KO side.
		logger.Warn("translator disabled, ko_batch events will carry EN only")
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.TranslatorProvider)
	}
}

// Disabled satisfies Translator without calling any engine.
type Disabled struct{}

func (Disabled) Translate(ctx context.Context, english string) (string, error) {
	return "", nil
}
