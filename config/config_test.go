package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clauselens-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no .env or config.yaml leaks in
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.KeepUploads)
	assert.Equal(t, 120*time.Second, cfg.HTTPTimeout)

	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(filepath.Dir(cfg.Storage.LocalPath))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, "uploads", filepath.Base(cfg.Storage.LocalPath))

	assert.Equal(t, RetrievalPinecone, cfg.Retrieval.Backend)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "dense-index", cfg.Retrieval.PineconeIndexName)
	assert.Equal(t, "example-namespace", cfg.Retrieval.Namespace)

	assert.Equal(t, ProviderCohere, cfg.LLM.Provider)
	assert.Equal(t, "command-a-03-2025", cfg.LLM.CohereModel)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 1200, cfg.LLM.MaxTokens)
	assert.Equal(t, 30000, cfg.LLM.MaxDocumentChars)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("COHERE_API_KEY", "cohere-key")
	t.Setenv("PINECONE_API_KEY", "pinecone-key")
	t.Setenv("RETRIEVAL_BACKEND", "PGVECTOR")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("KEEP_UPLOADS", "false")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("LLM_TEMPERATURE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "cohere-key", cfg.LLM.CohereAPIKey)
	assert.Equal(t, "pinecone-key", cfg.Retrieval.PineconeAPIKey)
	assert.Equal(t, RetrievalPgvector, cfg.Retrieval.Backend)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.False(t, cfg.KeepUploads)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-6)
	assert.True(t, cfg.NeedsGemini())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := "RETRIEVAL_TOP_K: 5\nCOHERE_MODEL: command-r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "command-r", cfg.LLM.CohereModel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MaxUploadBytes: 1024,
			Retrieval:      RetrievalConfig{Backend: RetrievalPinecone, TopK: 3, PineconeAPIKey: "p"},
			LLM:            LLMConfig{Provider: ProviderCohere, CohereAPIKey: "c"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing cohere key", func(c *Config) { c.LLM.CohereAPIKey = "" }, "COHERE_API_KEY"},
		{"missing gemini key", func(c *Config) { c.LLM.Provider = ProviderGemini }, "GEMINI_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "other" }, "unknown LLM_PROVIDER"},
		{"missing pinecone key", func(c *Config) { c.Retrieval.PineconeAPIKey = "" }, "PINECONE_API_KEY"},
		{"pgvector needs gemini", func(c *Config) { c.Retrieval.Backend = RetrievalPgvector }, "GEMINI_API_KEY"},
		{"no retrieval", func(c *Config) { c.Retrieval.Backend = RetrievalNone }, ""},
		{"unknown backend", func(c *Config) { c.Retrieval.Backend = "faiss" }, "unknown RETRIEVAL_BACKEND"},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }, "RETRIEVAL_TOP_K"},
		{"zero upload cap", func(c *Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateRetrieval_IgnoresChatProvider(t *testing.T) {
	cfg := &Config{
		Retrieval: RetrievalConfig{Backend: RetrievalPinecone, TopK: 3, PineconeAPIKey: "p"},
		LLM:       LLMConfig{Provider: ProviderCohere},
	}

	assert.NoError(t, cfg.ValidateRetrieval())
	assert.ErrorContains(t, cfg.Validate(), "COHERE_API_KEY")
}

func TestNeedsGemini(t *testing.T) {
	cfg := &Config{Retrieval: RetrievalConfig{Backend: RetrievalPinecone}, LLM: LLMConfig{Provider: ProviderCohere}}
	assert.False(t, cfg.NeedsGemini())

	cfg.Retrieval.Backend = RetrievalPgvector
	assert.True(t, cfg.NeedsGemini())

	cfg.Retrieval.Backend = RetrievalNone
	cfg.LLM.Provider = ProviderGemini
	assert.True(t, cfg.NeedsGemini())
}
