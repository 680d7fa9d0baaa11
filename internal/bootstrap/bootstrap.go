// Package bootstrap wires configuration into the concrete clients, stores and
// pipeline shared by the API server and the operator CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"geekqa/internal/config"
	"geekqa/internal/credentials"
	"geekqa/internal/llm"
	"geekqa/internal/prompt"
	"geekqa/internal/rag"
	"geekqa/internal/retrieval"
	"geekqa/internal/service"
	"geekqa/internal/storage"
)

// SetupLogger installs the default slog logger with the configured level and format.
func SetupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
	return logger
}

// LoadAWS loads the shared AWS configuration for the configured region.
// It returns a zero config when no component talks to AWS.
func LoadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.UsesAWS() {
		return aws.Config{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsCfg, nil
}

// CredentialSource picks Secrets Manager in production and the local defaults elsewhere.
func CredentialSource(cfg *config.Config, awsCfg aws.Config) credentials.Source {
	if cfg.IsProduction() {
		return credentials.NewSecretsManagerSource(
			secretsmanager.NewFromConfig(awsCfg),
			cfg.AuthSecretName,
			cfg.DBSecretName,
			cfg.DBPort,
		)
	}
	return credentials.StaticSource{Credentials: credentials.LocalDefaults()}
}

// OpenDatabase opens the greeting store and applies migrations.
func OpenDatabase(cfg *config.Config, creds credentials.Database) (*sql.DB, error) {
	dsn, err := storage.DSN(cfg.DBDriver, cfg.DBPath, creds)
	if err != nil {
		return nil, err
	}
	db, err := storage.New(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// NewRetriever builds the configured retrieval backend. The returned close function
// releases backend connections and is never nil.
func NewRetriever(cfg *config.Config, awsCfg aws.Config) (retrieval.Backend, func() error, error) {
	filter := retrieval.Filter{LanguageCode: cfg.RetrievalLanguage, TopK: cfg.RetrievalTopK}
	noop := func() error { return nil }

	switch cfg.RetrievalBackend {
	case config.BackendKendra:
		r, err := retrieval.NewKendraRetriever(kendra.NewFromConfig(awsCfg), cfg.KendraIndexID, filter)
		if err != nil {
			return nil, noop, err
		}
		return r, noop, nil
	case config.BackendQdrant:
		client, err := retrieval.NewQdrantClient(cfg.QdrantURL)
		if err != nil {
			return nil, noop, err
		}
		embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName)
		r, err := retrieval.NewQdrantRetriever(client, embedder, cfg.QdrantCollection, filter)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return r, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown retrieval backend %q", cfg.RetrievalBackend)
	}
}

// NewGenerator builds the configured generation backend.
func NewGenerator(cfg *config.Config, awsCfg aws.Config) (rag.Generator, error) {
	switch cfg.GenerationBackend {
	case config.BackendBedrock:
		return llm.NewBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, cfg.GenerationMaxTokens)
	case config.BackendOpenAI:
		return llm.NewOpenAIGenerator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.GenerationMaxTokens)
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.GenerationBackend)
	}
}

// NewAnswerer assembles the QA pipeline. The template is validated here so a bad
// template stops startup instead of failing requests.
func NewAnswerer(cfg *config.Config, awsCfg aws.Config) (*rag.Orchestrator, func() error, error) {
	orch, _, closeFn, err := newPipeline(cfg, awsCfg)
	return orch, closeFn, err
}

func newPipeline(cfg *config.Config, awsCfg aws.Config) (*rag.Orchestrator, retrieval.Backend, func() error, error) {
	composer, err := prompt.LoadComposer(cfg.PromptTemplatePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load prompt template: %w", err)
	}

	retriever, closeRetriever, err := NewRetriever(cfg, awsCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	generator, err := NewGenerator(cfg, awsCfg)
	if err != nil {
		_ = closeRetriever()
		return nil, nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	orch, err := rag.NewOrchestrator(retriever, composer, generator, rag.Options{
		RetrievalTimeout:  cfg.RetrievalTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		_ = closeRetriever()
		return nil, nil, nil, err
	}
	return orch, retriever, closeRetriever, nil
}

// App holds everything the API server needs, built once at startup.
type App struct {
	Config      *config.Config
	Credentials credentials.Credentials
	DB          *sql.DB
	Greetings   service.GreetingService
	GreetingDB  *storage.GreetingRepo
	QA          *rag.Orchestrator
	// Retrieval is the search backend behind QA, exposed for health checks.
	Retrieval retrieval.Backend

	closers []func() error
}

// New resolves credentials, opens the database and assembles the QA pipeline.
// Any failure is fatal for the caller; partially opened resources are released.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	awsCfg, err := LoadAWS(ctx, cfg)
	if err != nil {
		return nil, err
	}

	creds, err := CredentialSource(cfg, awsCfg).Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	app := &App{Config: cfg, Credentials: creds}

	db, err := OpenDatabase(cfg, creds.Database)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)
	app.GreetingDB = storage.NewGreetingRepo(db)
	app.Greetings = service.NewGreetingService(app.GreetingDB)

	qa, retriever, closeQA, err := newPipeline(cfg, awsCfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.QA = qa
	app.Retrieval = retriever
	app.closers = append(app.closers, closeQA)

	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
