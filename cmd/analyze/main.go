// Package main is a command line front end to the upload pipeline: it
// extracts a local document and prints the analysis as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"clauselens-backend/config"
	"clauselens-backend/extractor"
	"clauselens-backend/service"
	"clauselens-backend/storage"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Score a PDF, DOCX or TXT document for legal risk",
	Long: `analyze runs the same pipeline as POST /upload on a local file: text
extraction, retrieval of reference clauses, and a model-generated scorecard.
Configuration is read from .env, config.yaml and the environment.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runAnalyze,
}

func init() {
	rootCmd.Flags().Bool("extract-only", false, "print the extracted text and skip analysis")
	rootCmd.Flags().String("provider", "", "override LLM_PROVIDER (cohere or gemini)")
	rootCmd.Flags().String("retrieval", "", "override RETRIEVAL_BACKEND (pinecone, pgvector or none)")
	rootCmd.Flags().Int("top-k", 0, "override RETRIEVAL_TOP_K")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !storage.AllowedFile(path) {
		return fmt.Errorf("invalid file type: %s (allowed: pdf, docx, txt)", path)
	}

	text, err := extractor.ExtractFile(path)
	if err != nil {
		return err
	}

	extractOnly, _ := cmd.Flags().GetBool("extract-only")
	if extractOnly {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v, _ := cmd.Flags().GetString("retrieval"); v != "" {
		cfg.Retrieval.Backend = v
	}
	if v, _ := cmd.Flags().GetInt("top-k"); v > 0 {
		cfg.Retrieval.TopK = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	components, err := service.Setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	result, err := components.Analysis.Analyze(ctx, text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"analysis": result})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
