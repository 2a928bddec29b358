package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

var (
	errMissingAPIKey   = errors.New("API key is not set")
	errMissingPromptID = errors.New("PROMPT_ID environment variable is not set")
)

type Config struct {
	Provider        Provider
	InputMode       InputMode
	DataDir         string
	OutputDir       string
	ChunkSize       int
	Delay           time.Duration
	MaxOutputTokens int
	LogLevel        string

	OpenAIKey     string
	OpenAIBaseURL string
	PromptID      string

	GeminiKey    string
	GeminiModel  string
	SystemPrompt string
}

// fileConfig is the optional YAML file. Credentials are never read from it.
type fileConfig struct {
	Provider        string `yaml:"provider"`
	InputMode       string `yaml:"input_mode"`
	DataDir         string `yaml:"data_dir"`
	OutputDir       string `yaml:"output_dir"`
	ChunkSize       int    `yaml:"chunk_size"`
	Delay           string `yaml:"delay"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	GeminiModel     string `yaml:"gemini_model"`
	SystemPrompt    string `yaml:"system_prompt"`
}

func defaultConfig() Config {
	return Config{
		Provider:        ProviderOpenAI,
		InputMode:       InputMessage,
		DataDir:         "./data",
		OutputDir:       "./output",
		ChunkSize:       defaultChunkSize,
		Delay:           defaultDelay,
		MaxOutputTokens: defaultMaxOutputTokens,
		LogLevel:        "info",
		GeminiModel:     defaultGeminiModel,
	}
}

// loadDotEnv reads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// loadConfig layers the YAML file (if any) and the environment over the
// defaults. Flags are applied by the caller afterwards.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
		if err := cfg.applyFile(fc); err != nil {
			return cfg, err
		}
	}

	if v := getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(v)
	}
	if v := getenv("INPUT_MODE"); v != "" {
		cfg.InputMode = InputMode(v)
	}
	if v := getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.OpenAIKey = getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = getenv("OPENAI_BASE_URL")
	cfg.PromptID = getenv("PROMPT_ID")
	cfg.GeminiKey = getenv("GEMINI_API_KEY")

	return cfg, nil
}

func (c *Config) applyFile(fc fileConfig) error {
	if fc.Provider != "" {
		c.Provider = Provider(fc.Provider)
	}
	if fc.InputMode != "" {
		c.InputMode = InputMode(fc.InputMode)
	}
	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.ChunkSize != 0 {
		c.ChunkSize = fc.ChunkSize
	}
	if fc.Delay != "" {
		d, err := time.ParseDuration(fc.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", fc.Delay, err)
		}
		c.Delay = d
	}
	if fc.MaxOutputTokens != 0 {
		c.MaxOutputTokens = fc.MaxOutputTokens
	}
	if fc.GeminiModel != "" {
		c.GeminiModel = fc.GeminiModel
	}
	if fc.SystemPrompt != "" {
		c.SystemPrompt = fc.SystemPrompt
	}
	return nil
}

func (c Config) validate() error {
	if _, err := parseInputMode(string(c.InputMode)); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", c.MaxOutputTokens)
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY: %w", errMissingAPIKey)
		}
		if c.PromptID == "" {
			return errMissingPromptID
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY: %w", errMissingAPIKey)
		}
		if c.InputMode == InputNone {
			return fmt.Errorf("input mode %q needs a stored prompt and is not supported by gemini", InputNone)
		}
	default:
		return fmt.Errorf("unknown provider %q, use openai/gemini", c.Provider)
	}
	return nil
}
