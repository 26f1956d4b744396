package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"

	"clauselens-backend/models"
)

// Retriever ranks reference clauses against a query
type Retriever interface {
	Search(ctx context.Context, query models.RetrievalQuery) ([]models.RetrievalHit, error)
}

// Indexer loads reference clauses into a retrieval backend
type Indexer interface {
	Upsert(ctx context.Context, chunks []models.LegalChunk) error
}

var ErrRetrievalFailed = errors.New("failed to retrieve grounding documents")

// Pinecone accepts at most 96 text records per integrated upsert
const maxUpsertBatch = 96

// PineconeConfig addresses an integrated-embedding Pinecone index
type PineconeConfig struct {
	APIKey     string
	IndexName  string
	IndexHost  string // resolved from IndexName when empty
	Namespace  string
	HTTPClient *http.Client
}

// recordIndex is the slice of *pinecone.IndexConnection used for text records
type recordIndex interface {
	SearchRecords(ctx context.Context, in *pinecone.SearchRecordsRequest) (*pinecone.SearchRecordsResponse, error)
	UpsertRecords(ctx context.Context, records []*pinecone.IntegratedRecord) error
}

// PineconeRetriever searches a Pinecone index that embeds text server side
type PineconeRetriever struct {
	indexName string
	namespace string
	connect   func(ctx context.Context) (recordIndex, error)

	mu    sync.Mutex
	index recordIndex
	conn  *pinecone.IndexConnection
}

// NewPineconeRetriever creates a new Pinecone retriever; the index is dialed on first use
func NewPineconeRetriever(cfg PineconeConfig) (*PineconeRetriever, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey:     cfg.APIKey,
		RestClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	r := &PineconeRetriever{
		indexName: cfg.IndexName,
		namespace: cfg.Namespace,
	}
	r.connect = func(ctx context.Context) (recordIndex, error) {
		host := cfg.IndexHost
		if host == "" {
			if cfg.IndexName == "" {
				return nil, errors.New("pinecone index name not set")
			}
			index, err := client.DescribeIndex(ctx, cfg.IndexName)
			if err != nil {
				return nil, fmt.Errorf("failed to describe index %s: %w", cfg.IndexName, err)
			}
			host = index.Host
			log.Printf("Resolved Pinecone index %s to %s", cfg.IndexName, host)
		}

		conn, err := client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: cfg.Namespace})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to index at %s: %w", host, err)
		}
		r.conn = conn
		return conn, nil
	}
	return r, nil
}

// Search ranks the namespace's records against the query text
func (r *PineconeRetriever) Search(ctx context.Context, query models.RetrievalQuery) ([]models.RetrievalHit, error) {
	topK := query.TopK
	if topK <= 0 {
		topK = models.DefaultTopK
	}

	index, err := r.connection(ctx)
	if err != nil {
		return nil, err
	}

	inputs := map[string]interface{}{"text": query.Text}
	fields := []string{"category", "chunk_text"}
	resp, err := index.SearchRecords(ctx, &pinecone.SearchRecordsRequest{
		Query: pinecone.SearchRecordsQuery{
			TopK:   int32(topK),
			Inputs: &inputs,
		},
		Fields: &fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	hits := make([]models.RetrievalHit, 0, len(resp.Result.Hits))
	for _, hit := range resp.Result.Hits {
		hits = append(hits, models.RetrievalHit{
			Title:   stringField(hit.Fields, "category"),
			Snippet: stringField(hit.Fields, "chunk_text"),
		})
	}
	return hits, nil
}

// Upsert writes chunks as records; Pinecone embeds chunk_text itself
func (r *PineconeRetriever) Upsert(ctx context.Context, chunks []models.LegalChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	index, err := r.connection(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += maxUpsertBatch {
		end := min(start+maxUpsertBatch, len(chunks))
		records := make([]*pinecone.IntegratedRecord, 0, end-start)
		for _, chunk := range chunks[start:end] {
			records = append(records, &pinecone.IntegratedRecord{
				"_id":             chunk.ID.String(),
				"chunk_text":      chunk.Text,
				"category":        chunk.Category,
				"source_document": chunk.SourceDocument,
				"chunk_index":     chunk.ChunkIndex,
			})
		}
		if err := index.UpsertRecords(ctx, records); err != nil {
			return fmt.Errorf("failed to upsert records %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// Close releases the data plane connection if one was opened
func (r *PineconeRetriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn, r.index = nil, nil
	return err
}

// connection dials the index once per retriever
func (r *PineconeRetriever) connection(ctx context.Context) (recordIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil {
		return r.index, nil
	}
	index, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	r.index = index
	return index, nil
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// ChunkStore is the pgvector repository seen by ChunkRetriever
type ChunkStore interface {
	SearchSimilar(ctx context.Context, embedding []float32, namespace string, limit int) ([]models.LegalChunk, error)
	InsertChunks(ctx context.Context, chunks []models.LegalChunk) error
	CountBySource(ctx context.Context, namespace, sourceDocument string) (int, error)
}

// ChunkRetriever embeds queries locally and searches legal_chunks by cosine distance
type ChunkRetriever struct {
	embedder  Embedder
	store     ChunkStore
	namespace string
}

// NewChunkRetriever creates a new pgvector retriever
func NewChunkRetriever(embedder Embedder, store ChunkStore, namespace string) *ChunkRetriever {
	return &ChunkRetriever{
		embedder:  embedder,
		store:     store,
		namespace: namespace,
	}
}

// Search returns the closest reference clauses in the namespace
func (r *ChunkRetriever) Search(ctx context.Context, query models.RetrievalQuery) ([]models.RetrievalHit, error) {
	topK := query.TopK
	if topK <= 0 {
		topK = models.DefaultTopK
	}

	embedding, err := r.embedder.EmbedQuery(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	chunks, err := r.store.SearchSimilar(ctx, embedding, r.namespace, topK)
	if err != nil {
		return nil, err
	}

	hits := make([]models.RetrievalHit, 0, len(chunks))
	for _, chunk := range chunks {
		hits = append(hits, chunk.Hit())
	}
	return hits, nil
}

// Upsert embeds each chunk as a retrieval document and stores it
func (r *ChunkRetriever) Upsert(ctx context.Context, chunks []models.LegalChunk) error {
	for i := range chunks {
		embedding, err := r.embedder.EmbedDocument(ctx, chunks[i].Category, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %s: %w", chunks[i].ChunkIndex, chunks[i].SourceDocument, err)
		}
		chunks[i].Embedding = embedding
		chunks[i].Namespace = r.namespace
	}
	return r.store.InsertChunks(ctx, chunks)
}

// Indexed reports how many chunks of sourceDocument are already stored
func (r *ChunkRetriever) Indexed(ctx context.Context, sourceDocument string) (int, error) {
	return r.store.CountBySource(ctx, r.namespace, sourceDocument)
}

// NopRetriever is used when no grounding index is configured
type NopRetriever struct{}

// Search always returns no hits
func (NopRetriever) Search(ctx context.Context, query models.RetrievalQuery) ([]models.RetrievalHit, error) {
	return nil, nil
}
