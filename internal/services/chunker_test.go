package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunkText(t *testing.T) {
	tc := NewTextChunker()

	text := "First paragraph.\n\nSecond paragraph is a little longer.\n\n\n\nThird."
	chunks := tc.ChunkText(text, 40)

	assert.Equal(t, []string{
		"First paragraph.",
		"Second paragraph is a little longer.",
		"Third.",
	}, chunks)
}

func TestChunkText_PacksSmallParagraphs(t *testing.T) {
	chunks := NewTextChunker().ChunkText("a\n\nb\n\nc", 100)
	assert.Equal(t, []string{"a\n\nb\n\nc"}, chunks)
}

func TestChunkText_HardCutsLongLines(t *testing.T) {
	line := strings.Repeat("é", 25)

	chunks := NewTextChunker().ChunkText(line, 10)

	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Equal(t, line, strings.Join(chunks, ""))
}

func TestBudget(t *testing.T) {
	tc := NewTextChunker()

	assert.Equal(t, "short", tc.Budget("short", 100))
	assert.Equal(t, "anything", tc.Budget("anything", 0))

	text := strings.Repeat("bamboo fibre\n", 30)
	got := tc.Budget(text, 40)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), 40)
	assert.True(t, strings.HasPrefix(got, "bamboo fibre"))
}
