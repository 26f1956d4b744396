package service

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"clauselens-backend/config"
	"clauselens-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

// Components holds the clients built from configuration
type Components struct {
	Analysis  *AnalysisService
	Retriever Retriever
	Indexer   Indexer // nil when the backend cannot be written to

	db       *pgxpool.Pool
	gemini   *genai.Client
	pinecone *PineconeRetriever
}

// Setup connects the configured retrieval backend and chat provider
func Setup(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	if cfg.NeedsGemini() {
		client, err := initGemini(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		c.gemini = client
	}

	switch cfg.Retrieval.Backend {
	case config.RetrievalPinecone:
		pc, err := NewPineconeRetriever(PineconeConfig{
			APIKey:     cfg.Retrieval.PineconeAPIKey,
			IndexName:  cfg.Retrieval.PineconeIndexName,
			IndexHost:  cfg.Retrieval.PineconeIndexHost,
			Namespace:  cfg.Retrieval.Namespace,
			HTTPClient: httpClient,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.pinecone = pc
		c.Retriever, c.Indexer = pc, pc
	case config.RetrievalPgvector:
		db, err := initPostgres(ctx, cfg.Retrieval.DatabaseURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		c.db = db
		cr := NewChunkRetriever(
			NewGeminiEmbedder(c.gemini, cfg.LLM.GeminiEmbeddingModel),
			repository.NewLegalChunkRepository(db),
			cfg.Retrieval.Namespace,
		)
		c.Retriever, c.Indexer = cr, cr
	default:
		c.Retriever = NopRetriever{}
	}
	log.Printf("Retrieval backend: %s", cfg.Retrieval.Backend)

	var chat ChatModel
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		chat = NewGeminiChat(c.gemini, cfg.LLM.GeminiModel)
	default:
		chat = NewCohereChat(CohereConfig{
			APIKey:     cfg.LLM.CohereAPIKey,
			Model:      cfg.LLM.CohereModel,
			HTTPClient: httpClient,
		})
	}
	log.Printf("Language model provider: %s", cfg.LLM.Provider)

	c.Analysis = NewAnalysisService(
		AnalysisWithRetriever(c.Retriever),
		AnalysisWithChatModel(chat),
		AnalysisWithTopK(cfg.Retrieval.TopK),
		AnalysisWithTemperature(cfg.LLM.Temperature),
		AnalysisWithMaxTokens(cfg.LLM.MaxTokens),
		AnalysisWithMaxDocumentChars(cfg.LLM.MaxDocumentChars),
	)
	return c, nil
}

// Close releases database and SDK connections
func (c *Components) Close() {
	if c.pinecone != nil {
		if err := c.pinecone.Close(); err != nil {
			log.Printf("Warning: failed to close Pinecone connection: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			log.Printf("Warning: failed to close Gemini client: %v", err)
		}
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}

func initGemini(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
