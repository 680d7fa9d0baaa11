package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Retrieval, generation and database backends.
const (
	BackendKendra  = "kendra"
	BackendQdrant  = "qdrant"
	BackendBedrock = "bedrock"
	BackendOpenAI  = "openai"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"

	EnvironmentProduction = "production"

	// kendraMaxTopK mirrors the page size limit of the Kendra Retrieve API.
	kendraMaxTopK = 100
)

// Config holds all configuration for the application.
type Config struct {
	Environment     string
	APIPort         string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
	AWSRegion       string

	RetrievalBackend   string
	KendraIndexID      string
	RetrievalLanguage  string
	RetrievalTopK      int
	RetrievalTimeout   time.Duration
	QdrantURL          string
	QdrantCollection   string
	EmbeddingBaseURL   string
	EmbeddingModelName string

	GenerationBackend   string
	BedrockModelID      string
	LLMBaseURL          string
	LLMModelName        string
	LLMAPIKey           string
	GenerationMaxTokens int
	GenerationTimeout   time.Duration

	PromptTemplatePath string

	DBDriver       string
	DBPath         string
	DBPort         int
	AuthSecretName string
	DBSecretName   string

	// QARequireAuth puts POST /prompt behind the same basic auth gate as the pages.
	QARequireAuth bool
}

// IsProduction reports whether credentials must come from the secret service.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// UsesAWS reports whether any configured component talks to AWS.
func (c *Config) UsesAWS() bool {
	return c.IsProduction() || c.RetrievalBackend == BackendKendra || c.GenerationBackend == BackendBedrock
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up a few levels so binaries started from cmd/ still find the project .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	environment := getEnv("ENVIRONMENT", "local")
	defaultDriver := DriverSQLite
	if environment == EnvironmentProduction {
		defaultDriver = DriverPostgres
	}

	cfg := &Config{
		Environment:        environment,
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-1"),
		RetrievalBackend:   strings.ToLower(getEnv("RETRIEVAL_BACKEND", BackendKendra)),
		KendraIndexID:      getEnv("KENDRA_INDEX_ID", ""),
		RetrievalLanguage:  getEnv("RETRIEVAL_LANGUAGE", "ja"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		GenerationBackend:  strings.ToLower(getEnv("GENERATION_BACKEND", BackendBedrock)),
		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", "anthropic.claude-v2:1"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		PromptTemplatePath: getEnv("PROMPT_TEMPLATE_PATH", ""),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", defaultDriver)),
		DBPath:             getEnv("DB_PATH", "./data/geekqa.db"),
		AuthSecretName:     getEnv("AUTH_SECRET_NAME", "auth"),
		DBSecretName:       getEnv("DB_SECRET_NAME", "prod_db"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	if cfg.RetrievalTopK, err = getEnvInt("RETRIEVAL_TOP_K", 20); err != nil {
		return nil, err
	}
	if cfg.GenerationMaxTokens, err = getEnvInt("GENERATION_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.DBPort, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.RetrievalTimeout, err = getEnvDuration("RETRIEVAL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GenerationTimeout, err = getEnvDuration("GENERATION_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.QARequireAuth, err = getEnvBool("QA_REQUIRE_AUTH", true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks field ranges and backend-specific required fields.
func (c *Config) Validate() error {
	switch c.RetrievalBackend {
	case BackendKendra:
		if c.KendraIndexID == "" {
			return fmt.Errorf("KENDRA_INDEX_ID is required when RETRIEVAL_BACKEND=%s", BackendKendra)
		}
		if c.RetrievalTopK > kendraMaxTopK {
			return fmt.Errorf("RETRIEVAL_TOP_K must be at most %d when RETRIEVAL_BACKEND=%s", kendraMaxTopK, BackendKendra)
		}
	case BackendQdrant:
		if c.QdrantCollection == "" {
			return fmt.Errorf("QDRANT_COLLECTION is required when RETRIEVAL_BACKEND=%s", BackendQdrant)
		}
	default:
		return fmt.Errorf("RETRIEVAL_BACKEND must be %q or %q, got %q", BackendKendra, BackendQdrant, c.RetrievalBackend)
	}

	switch c.GenerationBackend {
	case BackendBedrock:
		if c.BedrockModelID == "" {
			return fmt.Errorf("BEDROCK_MODEL_ID is required when GENERATION_BACKEND=%s", BackendBedrock)
		}
	case BackendOpenAI:
		if c.LLMBaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required when GENERATION_BACKEND=%s", BackendOpenAI)
		}
	default:
		return fmt.Errorf("GENERATION_BACKEND must be %q or %q, got %q", BackendBedrock, BackendOpenAI, c.GenerationBackend)
	}

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}

	if c.RetrievalLanguage == "" {
		return fmt.Errorf("RETRIEVAL_LANGUAGE must not be empty")
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be greater than 0")
	}
	if c.GenerationMaxTokens <= 0 {
		return fmt.Errorf("GENERATION_MAX_TOKENS must be greater than 0")
	}
	if c.RetrievalTimeout <= 0 || c.GenerationTimeout <= 0 {
		return fmt.Errorf("RETRIEVAL_TIMEOUT and GENERATION_TIMEOUT must be positive durations")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 30s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", key, err)
	}
	return v, nil
}
