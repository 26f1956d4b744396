package repository

import (
	"context"
	"fmt"

	"clauselens-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the legal_chunks.embedding column
const EmbeddingDimensions = 768

// LegalChunkRepository handles database operations for legal chunks
type LegalChunkRepository struct {
	db *pgxpool.Pool
}

// NewLegalChunkRepository creates a new legal chunk repository
func NewLegalChunkRepository(db *pgxpool.Pool) *LegalChunkRepository {
	return &LegalChunkRepository{db: db}
}

func checkDimensions(embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}
	return nil
}

// SearchSimilar returns the chunks in namespace closest to embedding by cosine distance
func (r *LegalChunkRepository) SearchSimilar(
	ctx context.Context,
	embedding []float32,
	namespace string,
	limit int,
) ([]models.LegalChunk, error) {
	if err := checkDimensions(embedding); err != nil {
		return nil, err
	}

	query := `
		SELECT
			id,
			namespace,
			category,
			chunk_text,
			source_document,
			chunk_index,
			embedding <=> $1::vector AS distance
		FROM legal_chunks
		WHERE namespace = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(embedding), namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LegalChunk
	for rows.Next() {
		var chunk models.LegalChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.Namespace,
			&chunk.Category,
			&chunk.Text,
			&chunk.SourceDocument,
			&chunk.ChunkIndex,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal chunks: %w", err)
	}

	return chunks, nil
}

// InsertChunks upserts chunks keyed by (namespace, source_document, chunk_index) in one transaction
func (r *LegalChunkRepository) InsertChunks(ctx context.Context, chunks []models.LegalChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO legal_chunks (id, namespace, category, chunk_text, source_document, chunk_index, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
		ON CONFLICT (namespace, source_document, chunk_index) DO UPDATE SET
			category = EXCLUDED.category,
			chunk_text = EXCLUDED.chunk_text,
			embedding = EXCLUDED.embedding`

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		if err := checkDimensions(chunk.Embedding); err != nil {
			return fmt.Errorf("chunk %d of %s: %w", chunk.ChunkIndex, chunk.SourceDocument, err)
		}
		id := chunk.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(query,
			id,
			chunk.Namespace,
			chunk.Category,
			chunk.Text,
			chunk.SourceDocument,
			chunk.ChunkIndex,
			pgvector.NewVector(chunk.Embedding),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert legal chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountBySource reports how many chunks of a source document are indexed
func (r *LegalChunkRepository) CountBySource(ctx context.Context, namespace, sourceDocument string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM legal_chunks WHERE namespace = $1 AND source_document = $2`,
		namespace, sourceDocument,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count legal chunks: %w", err)
	}
	return count, nil
}
