package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt("  The tenant shall pay rent monthly.  ", DefaultMaxDocumentChars)

	assert.Contains(t, prompt, "LEGAL DOCUMENT TO ANALYZE:\nThe tenant shall pay rent monthly.\n")
	for _, key := range []string{"fine_print", "transparency", "risk_level", "complexity", "legal_protection", "flexibility", "overall_score", "summary"} {
		assert.Contains(t, prompt, key)
	}
	assert.NotContains(t, prompt, truncationNotice)
}

func TestBuildAnalysisPrompt_Truncates(t *testing.T) {
	doc := strings.Repeat("a", 100)
	prompt := BuildAnalysisPrompt(doc, 40)

	assert.Contains(t, prompt, strings.Repeat("a", 40)+truncationNotice)
	assert.NotContains(t, prompt, strings.Repeat("a", 41))
}

func TestTruncateText_KeepsRunesWhole(t *testing.T) {
	// each "é" is two bytes, so a cut at 5 bytes lands mid rune
	out := truncateText("ééééé", 5)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "éé"+truncationNotice, out)
}

func TestTruncateText_NoLimit(t *testing.T) {
	assert.Equal(t, "abc", truncateText("abc", 0))
	assert.Equal(t, "abc", truncateText("abc", 3))
}
