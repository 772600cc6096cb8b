package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Directory exported documents are written to and served from.
	DownloadDir string `mapstructure:"download_dir"`
	BaseURL     string `mapstructure:"base_url"`
}

// EngineConfig holds credentials/endpoints for the external AI collaborators.
type EngineConfig struct {
	OpenAIApiKey string `mapstructure:"open_ai_api_key"`
	WhisperURL   string `mapstructure:"whisper_url"`
	WhisperModel string `mapstructure:"whisper_model"`
	GeminiApiKey string `mapstructure:"gemini_api_key"`
	OllamaURL    string `mapstructure:"ollama_url"`
	OllamaModel  string `mapstructure:"ollama_model"`
	// asr: "whisperd" | "openai" ; translator: "openai" | "gemini" | "ollama" | "none"
	ASRProvider        string `mapstructure:"asr_provider"`
	TranslatorProvider string `mapstructure:"translator_provider"`
}

// PipelineConfig tunes the confirm-window batching of the ingestion pipeline.
type PipelineConfig struct {
	MinWindowSec float64 `mapstructure:"min_window_sec"`
	MaxWindowSec float64 `mapstructure:"max_window_sec"`
	MinChars     int     `mapstructure:"min_chars"`
	// How long a session may be idle before the janitor drops it.
	SessionTTLMins int64 `mapstructure:"session_ttl_mins"`
	// TTL for hot batch entries kept in redis.
	BatchTTLMins int64 `mapstructure:"batch_ttl_mins"`
}

func (p PipelineConfig) SessionTTL() time.Duration {
	return time.Duration(p.SessionTTLMins) * time.Minute
}

func (p PipelineConfig) BatchTTL() time.Duration {
	return time.Duration(p.BatchTTLMins) * time.Minute
}

type Settings struct {
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Engines  EngineConfig   `mapstructure:"engines"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Env      string         `mapstructure:"env"`
	Debug    bool           `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settings.applyDefaults()
	return &settings, nil
}

func (s *Settings) applyDefaults() {
	if s.Server.Addr == "" {
		s.Server.Addr = ":8080"
	}
	if s.Server.DownloadDir == "" {
		s.Server.DownloadDir = "./downloads"
	}
	if s.Pipeline.MinWindowSec == 0 {
		s.Pipeline.MinWindowSec = 10.0
	}
	if s.Pipeline.MaxWindowSec == 0 {
		s.Pipeline.MaxWindowSec = 15.0
	}
	if s.Pipeline.MinChars == 0 {
		s.Pipeline.MinChars = 25
	}
	if s.Pipeline.SessionTTLMins == 0 {
		s.Pipeline.SessionTTLMins = 120
	}
	if s.Pipeline.BatchTTLMins == 0 {
		s.Pipeline.BatchTTLMins = 240
	}
	if s.Engines.WhisperModel == "" {
		s.Engines.WhisperModel = "whisper-1"
	}
	if s.Engines.ASRProvider == "" {
		s.Engines.ASRProvider = "whisperd"
	}
	if s.Engines.TranslatorProvider == "" {
		s.Engines.TranslatorProvider = "openai"
	}
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
