// Package main loads a directory of reference contracts into the retrieval index.
// Subdirectory names become chunk categories; files at the top level use their
// own name as the category.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"clauselens-backend/config"
	"clauselens-backend/service"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "build-index <dir>",
	Short: "Chunk reference documents and upsert them into the retrieval index",
	Long: `build-index walks a directory of PDF, DOCX and TXT reference documents,
splits their text into paragraph-aligned chunks and writes them to the
backend selected by RETRIEVAL_BACKEND. Pinecone embeds chunk_text on its side;
pgvector chunks are embedded with Gemini first.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runBuild,
}

func init() {
	rootCmd.Flags().Int("chunk-chars", service.DefaultChunkChars, "maximum characters per chunk")
	rootCmd.Flags().String("retrieval", "", "override RETRIEVAL_BACKEND (pinecone or pgvector)")
	rootCmd.Flags().Bool("force", false, "re-index documents that already have chunks")
	rootCmd.Flags().Bool("dry-run", false, "print what would be indexed without writing")
}

// indexedCounter is implemented by backends that can report existing chunks
type indexedCounter interface {
	Indexed(ctx context.Context, sourceDocument string) (int, error)
}

func runBuild(cmd *cobra.Command, args []string) error {
	chunkChars, _ := cmd.Flags().GetInt("chunk-chars")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("retrieval"); v != "" {
		cfg.Retrieval.Backend = v
	}

	docs, err := collectDocuments(args[0])
	if err != nil {
		return err
	}
	log.Printf("Found %d reference documents in %s", len(docs), args[0])

	if dryRun {
		for _, doc := range docs {
			chunks := doc.chunks(cfg.Retrieval.Namespace, chunkChars)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d chunks\n", doc.Source, doc.Category, len(chunks))
		}
		return nil
	}

	if cfg.Retrieval.Backend == config.RetrievalNone {
		return fmt.Errorf("RETRIEVAL_BACKEND is none; nothing to index")
	}
	if err := cfg.ValidateRetrieval(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	components, err := service.Setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	if components.Indexer == nil {
		return fmt.Errorf("retrieval backend %s cannot be indexed", cfg.Retrieval.Backend)
	}

	var total int
	for _, doc := range docs {
		if counter, ok := components.Indexer.(indexedCounter); ok && !force {
			count, err := counter.Indexed(ctx, doc.Source)
			if err != nil {
				return err
			}
			if count > 0 {
				log.Printf("Skipping %s (already indexed: %d chunks)", doc.Source, count)
				continue
			}
		}

		chunks := doc.chunks(cfg.Retrieval.Namespace, chunkChars)
		if len(chunks) == 0 {
			log.Printf("Warning: %s produced no text, skipping", doc.Source)
			continue
		}
		if err := components.Indexer.Upsert(ctx, chunks); err != nil {
			return fmt.Errorf("failed to index %s: %w", doc.Source, err)
		}
		total += len(chunks)
		log.Printf("Indexed %s: %d chunks (category %s)", doc.Source, len(chunks), doc.Category)
	}

	log.Printf("Done: %d chunks written to %s namespace %s", total, cfg.Retrieval.Backend, cfg.Retrieval.Namespace)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
