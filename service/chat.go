package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/google/generative-ai-go/genai"

	"clauselens-backend/models"
)

// ChatModel sends one grounded prompt to a hosted language model
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a single-turn user message plus grounding documents
type ChatRequest struct {
	Prompt      string
	Documents   []models.RetrievalHit
	Temperature float32
	MaxTokens   int
}

// ChatResponse carries the model's text reply
type ChatResponse struct {
	Text         string
	FinishReason string
	Model        string
}

const (
	DefaultCohereModel = "command-a-03-2025"
	DefaultGeminiModel = "gemini-1.5-flash"
)

// CohereConfig configures the Cohere v2 chat client
type CohereConfig struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// CohereChat talks to the Cohere v2 chat endpoint, passing grounding as documents
type CohereChat struct {
	model string
	send  func(ctx context.Context, req *cohere.V2ChatRequest) (*cohere.ChatResponse, error)
}

// NewCohereChat creates a new Cohere chat client
func NewCohereChat(cfg CohereConfig) *CohereChat {
	model := cfg.Model
	if model == "" {
		model = DefaultCohereModel
	}

	chat := &CohereChat{model: model}
	if cfg.APIKey == "" {
		return chat
	}

	opts := []cohereoption.RequestOption{cohereoption.WithToken(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		opts = append(opts, cohereoption.WithHTTPClient(cfg.HTTPClient))
	}
	client := cohereclient.NewClient(opts...)
	chat.send = func(ctx context.Context, req *cohere.V2ChatRequest) (*cohere.ChatResponse, error) {
		// the SDK retries by default
		return client.V2.Chat(ctx, req, cohereoption.WithMaxAttempts(1))
	}
	return chat
}

// Chat sends the prompt with documents attached as {title, snippet} records
func (c *CohereChat) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.send == nil {
		return nil, fmt.Errorf("COHERE_API_KEY not set")
	}

	temperature := float64(req.Temperature)
	chatReq := &cohere.V2ChatRequest{
		Model: c.model,
		Messages: cohere.ChatMessages{
			{
				Role: "user",
				User: &cohere.UserMessage{Content: &cohere.UserMessageContent{String: req.Prompt}},
			},
		},
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		chatReq.MaxTokens = &maxTokens
	}
	for _, doc := range req.Documents {
		chatReq.Documents = append(chatReq.Documents, &cohere.V2ChatRequestDocumentsItem{
			Document: &cohere.Document{
				Data: map[string]interface{}{"title": doc.Title, "snippet": doc.Snippet},
			},
		})
	}

	resp, err := c.send(ctx, chatReq)
	if err != nil {
		log.Printf("Cohere API error: %v", err)
		return nil, fmt.Errorf("API error: %w", err)
	}
	if resp == nil {
		return nil, errors.New("API returned no response")
	}

	finishReason := string(resp.FinishReason)
	var text strings.Builder
	if resp.Message != nil {
		for _, part := range resp.Message.Content {
			if part != nil && part.Text != nil {
				text.WriteString(part.Text.Text)
			}
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("API returned empty content (finish reason: %s)", finishReason)
	}

	return &ChatResponse{Text: text.String(), FinishReason: finishReason, Model: c.model}, nil
}

// GeminiChat generates through the Gemini SDK; grounding is inlined into the prompt
type GeminiChat struct {
	client *genai.Client
	model  string
}

// NewGeminiChat creates a new Gemini chat model
func NewGeminiChat(client *genai.Client, model string) *GeminiChat {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiChat{client: client, model: model}
}

// Chat asks the model for a JSON reply
func (g *GeminiChat) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if g.client == nil {
		return nil, errGeminiClientNotSet
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	model.ResponseMIMEType = "application/json"

	prompt := req.Prompt
	if refs := formatReferenceClauses(req.Documents); refs != "" {
		prompt = refs + "\n\n" + prompt
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, finishReason, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Text: text, FinishReason: finishReason, Model: g.model}, nil
}

// formatReferenceClauses renders grounding documents for models without a documents field
func formatReferenceClauses(docs []models.RetrievalHit) string {
	if len(docs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("REFERENCE CLAUSES:\n")
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n", i+1, doc.Title, strings.TrimSpace(doc.Snippet))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// responseText concatenates the text parts of every candidate
func responseText(resp *genai.GenerateContentResponse) (string, string, error) {
	if resp == nil {
		return "", "", errors.New("API returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", "", fmt.Errorf("API blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", "", errors.New("API returned no candidates")
	}

	var sb strings.Builder
	var finishReason string
	for i, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason != genai.FinishReasonUnspecified {
			finishReason = candidate.FinishReason.String()
			if candidate.FinishReason != genai.FinishReasonStop {
				log.Printf("Warning: Candidate %d finished with reason: %s", i, finishReason)
			}
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	if sb.Len() == 0 {
		return "", finishReason, fmt.Errorf("API returned empty content (finish reason: %s)", finishReason)
	}
	return sb.String(), finishReason, nil
}
