package service

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxDocumentChars = 30000

	truncationNotice = "\n\n[Document truncated due to length...]"
)

const analysisPromptTemplate = `You are a legal document analysis assistant that evaluates legal documents for transparency, fairness, and risk. Your task is to:
1. Extract fine print or hidden clauses.
2. Score the document on each legal risk category below.
3. Give an overall score out of 10.
4. Write a brief summary explaining the score.

SCORING CRITERIA (0-10 scale):
- transparency: Is the language clear, or is it intentionally vague?
- risk_level: How risky are the clauses for the user?
- complexity: Is the document easy to understand, or filled with legal jargon?
- legal_protection: Does the document protect the user's rights?
- flexibility: Does the document allow the user any room for negotiation?

LEGAL DOCUMENT TO ANALYZE:
%s

OUTPUT FORMAT (JSON only):
{
  "fine_print": ["Extracted clause 1", "Extracted clause 2"],
  "scores": {
    "transparency": 0,
    "risk_level": 0,
    "complexity": 0,
    "legal_protection": 0,
    "flexibility": 0
  },
  "overall_score": 0,
  "summary": "Brief summary of findings"
}

Respond with valid JSON only, without markdown fences or extra commentary.`

// BuildAnalysisPrompt embeds the document into the scoring rubric
func BuildAnalysisPrompt(documentText string, maxChars int) string {
	return fmt.Sprintf(analysisPromptTemplate, truncateText(strings.TrimSpace(documentText), maxChars))
}

// truncateText caps text at maxChars bytes without splitting a UTF-8 sequence
func truncateText(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return strings.ToValidUTF8(text[:maxChars], "") + truncationNotice
}
