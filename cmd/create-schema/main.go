package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"clauselens-backend/config"
	"clauselens-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var schemaSQL = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS legal_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),

    -- Retrieval scope; mirrors the Pinecone namespace
    namespace VARCHAR(255) NOT NULL,

    -- Returned to the model as the document title
    category VARCHAR(255) NOT NULL DEFAULT '',

    source_document VARCHAR(512) NOT NULL,
    chunk_index INTEGER NOT NULL,
    chunk_text TEXT NOT NULL,

    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW(),

    CONSTRAINT chunk_order_unique UNIQUE (namespace, source_document, chunk_index)
);`, repository.EmbeddingDimensions)

var indexes = []struct {
	name string
	sql  string
}{
	{
		name: "Vector similarity search (HNSW)",
		sql: `CREATE INDEX IF NOT EXISTS idx_embedding_hnsw ON legal_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
	},
	{
		name: "Namespace filtering",
		sql:  "CREATE INDEX IF NOT EXISTS idx_namespace ON legal_chunks(namespace);",
	},
	{
		name: "Source document filtering",
		sql:  "CREATE INDEX IF NOT EXISTS idx_source_document ON legal_chunks(namespace, source_document);",
	},
}

var rootCmd = &cobra.Command{
	Use:          "create-schema",
	Short:        "Create the pgvector legal_chunks table used by RETRIEVAL_BACKEND=pgvector",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().Bool("drop", false, "drop the existing legal_chunks table first")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, cfg.Retrieval.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Enable pgvector extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	if drop, _ := cmd.Flags().GetBool("drop"); drop {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS legal_chunks CASCADE"); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		log.Println("✓ Dropped existing legal_chunks table (if any)")
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create legal_chunks table: %w", err)
	}
	log.Println("✓ Created legal_chunks table")

	created := 0
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
			continue
		}
		created++
		log.Printf("✓ Created index: %s", idx.name)
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Table: legal_chunks")
	fmt.Printf("   Indexes: %d indexes created\n", created)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
