package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clauselens-backend/models"
)

var ErrMalformedAnalysis = errors.New("model returned a malformed analysis")

const (
	minScore = 0
	maxScore = 10
)

type rawScores struct {
	Transparency    *float64 `json:"transparency"`
	RiskLevel       *float64 `json:"risk_level"`
	Complexity      *float64 `json:"complexity"`
	LegalProtection *float64 `json:"legal_protection"`
	Flexibility     *float64 `json:"flexibility"`
}

// scores requires every sub-score; zero is a valid score, absence is not
func (r *rawScores) scores() (models.Scores, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"transparency", r.Transparency},
		{"risk_level", r.RiskLevel},
		{"complexity", r.Complexity},
		{"legal_protection", r.LegalProtection},
		{"flexibility", r.Flexibility},
	}
	for _, f := range fields {
		if f.value == nil {
			return models.Scores{}, fmt.Errorf("missing score %s", f.name)
		}
	}
	return models.Scores{
		Transparency:    *r.Transparency,
		RiskLevel:       *r.RiskLevel,
		Complexity:      *r.Complexity,
		LegalProtection: *r.LegalProtection,
		Flexibility:     *r.Flexibility,
	}, nil
}

type rawAnalysis struct {
	FinePrint    []string   `json:"fine_print"`
	Scores       *rawScores `json:"scores"`
	OverallScore *float64   `json:"overall_score"`
	Summary      string     `json:"summary"`
}

// DecodeAnalysis turns the model's reply into a scorecard; every failure wraps ErrMalformedAnalysis
func DecodeAnalysis(reply string) (*models.AnalysisResult, error) {
	jsonText, err := locateJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}
	if raw.Scores == nil {
		return nil, fmt.Errorf("%w: missing scores", ErrMalformedAnalysis)
	}
	if raw.OverallScore == nil {
		return nil, fmt.Errorf("%w: missing overall_score", ErrMalformedAnalysis)
	}

	scores, err := raw.Scores.scores()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}
	for name, value := range scores.Named() {
		if value < minScore || value > maxScore {
			return nil, fmt.Errorf("%w: score %s out of range: %v", ErrMalformedAnalysis, name, value)
		}
	}
	if *raw.OverallScore < minScore || *raw.OverallScore > maxScore {
		return nil, fmt.Errorf("%w: overall_score out of range: %v", ErrMalformedAnalysis, *raw.OverallScore)
	}

	finePrint := make([]string, 0, len(raw.FinePrint))
	for _, clause := range raw.FinePrint {
		if clause = strings.TrimSpace(clause); clause != "" {
			finePrint = append(finePrint, clause)
		}
	}

	return &models.AnalysisResult{
		FinePrint:    finePrint,
		Scores:       scores,
		OverallScore: *raw.OverallScore,
		Summary:      strings.TrimSpace(raw.Summary),
	}, nil
}

// locateJSONObject strips markdown fences and falls back to the outermost braces
func locateJSONObject(reply string) (string, error) {
	text := strings.TrimSpace(reply)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if json.Valid([]byte(text)) {
		return text, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", errors.New("no JSON object in reply")
	}
	return text[start : end+1], nil
}
