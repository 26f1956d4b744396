package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"clauselens-backend/models"
)

// AnalysisService scores a legal document with a grounded chat model
type AnalysisService struct {
	retriever        Retriever
	chat             ChatModel
	topK             int
	temperature      float32
	maxTokens        int
	maxDocumentChars int
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithRetriever sets the grounding retriever
func AnalysisWithRetriever(r Retriever) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.retriever = r
	}
}

// AnalysisWithChatModel sets the language model
func AnalysisWithChatModel(m ChatModel) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.chat = m
	}
}

// AnalysisWithTopK sets the number of grounding documents
func AnalysisWithTopK(k int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// AnalysisWithTemperature sets the sampling temperature
func AnalysisWithTemperature(t float32) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.temperature = t
	}
}

// AnalysisWithMaxTokens sets the reply length limit
func AnalysisWithMaxTokens(n int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// AnalysisWithMaxDocumentChars caps how much document text reaches the prompt
func AnalysisWithMaxDocumentChars(n int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if n > 0 {
			s.maxDocumentChars = n
		}
	}
}

const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1200
)

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		retriever:        NopRetriever{},
		topK:             models.DefaultTopK,
		temperature:      DefaultTemperature,
		maxTokens:        DefaultMaxTokens,
		maxDocumentChars: DefaultMaxDocumentChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrEmptyDocument  = errors.New("document contains no text")
	ErrAnalysisFailed = errors.New("analysis failed")
)

// UpstreamError reports a failed model call; it matches ErrAnalysisFailed
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "analysis failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

// Analyze retrieves grounding, prompts the model and decodes its scorecard
func (s *AnalysisService) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if s.chat == nil {
		return nil, errors.New("chat model not set")
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	documents := s.retrieveGrounding(ctx, text)

	resp, err := s.chat.Chat(ctx, ChatRequest{
		Prompt:      BuildAnalysisPrompt(text, s.maxDocumentChars),
		Documents:   documents,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	result, err := DecodeAnalysis(resp.Text)
	if err != nil {
		log.Printf("Warning: %s reply could not be decoded (finish reason: %s): %v", resp.Model, resp.FinishReason, err)
		return nil, err
	}
	return result, nil
}

// retrieveGrounding never fails the analysis; without hits the model runs ungrounded
func (s *AnalysisService) retrieveGrounding(ctx context.Context, text string) []models.RetrievalHit {
	if s.retriever == nil {
		return nil
	}

	hits, err := s.retriever.Search(ctx, models.RetrievalQuery{
		Text: truncateText(strings.TrimSpace(text), s.maxDocumentChars),
		TopK: s.topK,
	})
	if err != nil {
		log.Printf("Warning: %v", fmt.Errorf("%w: %w", ErrRetrievalFailed, err))
		return nil
	}
	return hits
}
