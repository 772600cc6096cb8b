package translate

import (
	"context"
	"testing"

	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSettingsDisabled(t *testing.T) {
	tr, err := FromSettings(context.Background(), config.EngineConfig{TranslatorProvider: "none"}, Logger.Noop())
	require.NoError(t, err)

	ko, err := tr.Translate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, ko)
}

func TestFromSettingsOpenAIRequiresKey(t *testing.T) {
	_, err := FromSettings(context.Background(), config.EngineConfig{TranslatorProvider: "openai"}, Logger.Noop())
	assert.Error(t, err)

	tr, err := FromSettings(context.Background(), config.EngineConfig{TranslatorProvider: "openai", OpenAIApiKey: "sk-test"}, Logger.Noop())
	require.NoError(t, err)
	assert.NotNil(t, tr)
}

func TestFromSettingsUnknownProvider(t *testing.T) {
	_, err := FromSettings(context.Background(), config.EngineConfig{TranslatorProvider: "deepl"}, Logger.Noop())
	assert.Error(t, err)
}
