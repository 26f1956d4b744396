package models

// Scores holds the five rubric sub-scores, each on a 0-10 scale
type Scores struct {
	Transparency    float64 `json:"transparency"`
	RiskLevel       float64 `json:"risk_level"`
	Complexity      float64 `json:"complexity"`
	LegalProtection float64 `json:"legal_protection"`
	Flexibility     float64 `json:"flexibility"`
}

// AnalysisResult is the scorecard returned to the caller
type AnalysisResult struct {
	FinePrint    []string `json:"fine_print"`
	Scores       Scores   `json:"scores"`
	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
}

// Named returns the sub-scores keyed by their JSON names
func (s Scores) Named() map[string]float64 {
	return map[string]float64{
		"transparency":     s.Transparency,
		"risk_level":       s.RiskLevel,
		"complexity":       s.Complexity,
		"legal_protection": s.LegalProtection,
		"flexibility":      s.Flexibility,
	}
}
