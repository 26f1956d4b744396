package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIntoChunks_PacksParagraphs(t *testing.T) {
	text := "First clause.\n\nSecond clause.\r\n\r\nThird clause that is longer."

	chunks := SplitIntoChunks(text, 32)

	assert.Equal(t, []string{
		"First clause.\n\nSecond clause.",
		"Third clause that is longer.",
	}, chunks)
}

func TestSplitIntoChunks_SplitsLongParagraph(t *testing.T) {
	text := "one two three four five six seven eight nine ten"

	chunks := SplitIntoChunks(text, 15)

	assert.Equal(t, []string{"one two three", "four five six", "seven eight", "nine ten"}, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 15)
	}
}

func TestSplitIntoChunks_CutsOversizedWord(t *testing.T) {
	chunks := SplitIntoChunks(strings.Repeat("x", 25), 10)

	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}

func TestSplitIntoChunks_Empty(t *testing.T) {
	assert.Empty(t, SplitIntoChunks("  \n\n\t ", 100))
}

func TestSplitIntoChunks_DefaultSize(t *testing.T) {
	chunks := SplitIntoChunks(strings.Repeat("word ", 500), 0)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), DefaultChunkChars)
	}
}
